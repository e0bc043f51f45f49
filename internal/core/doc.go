// Package core provides the book-lending catalog operations.
//
// This package holds the domain logic independent of any transport. The web
// server and the CLI both drive the same [Service].
//
// # Tables
//
// The catalog lives in two tables described by package schema: stock (one
// row per title, with a copies counter) and borrowed (one row per lent copy).
// Both are opened through a [sheet.Backend] by [OpenTables], which creates
// missing tables and rewrites their header rows.
//
// # Records and Rows
//
// A [Record] is a row keyed by logical field. Records returned by
// [Service.Search] and [Service.List] carry the CellRow they were read from.
// That position is single-use: an append or delete in the same table may
// move it, so every write re-reads the row and refuses to touch it unless it
// still holds the same ISBN.
//
// # Composite Operations
//
// [Service.CheckOut] and [Service.Return] move a copy between the tables in
// two steps with no transaction. The order of the steps is fixed so a
// failure in between duplicates a book rather than losing it, and the
// failure is reported as a [PartialFailureError]. Each step is logged with a
// shared op_id.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL003: Validation errors
//   - TBL001-TBL002: Table and header errors
//   - ROW001, DUP001, PART001: Row-level conflicts
//   - BE001-BE004: Backend errors by kind
package core
