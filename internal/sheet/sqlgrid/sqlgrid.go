// Package sqlgrid stores spreadsheet-style tables in a SQL database.
//
// Each grid row is one record of the sheet_rows table holding the JSON
// encoded cells. A row's position is its rank by id within the sheet, so
// deleting a record shifts every later row up the same way a spreadsheet
// does. Row 1 is the header row.
package sqlgrid

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// Dialect names.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Backend is a sheet.Backend over a *sql.DB.
type Backend struct {
	db      *sql.DB
	dialect string
}

var _ sheet.Backend = (*Backend)(nil)

// New wraps an open database and creates the grid schema if needed.
func New(ctx context.Context, db *sql.DB, dialect string) (*Backend, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("sqlgrid: unknown dialect %q", dialect)
	}

	b := &Backend{db: db, dialect: dialect}
	if err := b.migrate(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Close closes the database handle. A pgx pool passed to OpenPostgres is
// owned by the caller and stays open.
func (b *Backend) Close() error {
	return b.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

func (b *Backend) migrate(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if b.dialect == DialectPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			id ` + idColumn + `,
			sheet TEXT NOT NULL,
			cells TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id)`,
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return b.wrap(sheet.OpEnsureTable, "", fmt.Errorf("migrate: %w", err))
		}
	}
	return nil
}

// EnsureTable returns the grid named title, writing headers into row 1.
func (b *Backend) EnsureTable(ctx context.Context, title string, headers []string) (sheet.Table, error) {
	cells, err := encodeCells(headers)
	if err != nil {
		return nil, err
	}

	err = b.inTx(ctx, func(tx *sql.Tx) error {
		id, _, err := b.rowAt(ctx, tx, title, 1)
		if errors.Is(err, sql.ErrNoRows) {
			_, err = tx.ExecContext(ctx, b.rebind(`INSERT INTO sheet_rows (sheet, cells) VALUES (?, ?)`), title, cells)
			return err
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, b.rebind(`UPDATE sheet_rows SET cells = ? WHERE id = ?`), cells, id)
		return err
	})
	if err != nil {
		return nil, b.wrap(sheet.OpEnsureTable, title, err)
	}
	return &table{backend: b, title: title}, nil
}

type table struct {
	backend *Backend
	title   string
}

func (t *table) Title() string { return t.title }

func (t *table) ReadAll(ctx context.Context) ([][]string, error) {
	b := t.backend
	rows, err := b.db.QueryContext(ctx, b.rebind(`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY id`), t.title)
	if err != nil {
		return nil, b.wrap(sheet.OpReadAll, t.title, err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, b.wrap(sheet.OpReadAll, t.title, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, b.wrap(sheet.OpReadAll, t.title, err)
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, b.wrap(sheet.OpReadAll, t.title, err)
	}
	return grid, nil
}

func (t *table) ReadRow(ctx context.Context, row int) ([]string, error) {
	if row < 1 {
		return nil, &sheet.RowNotFoundError{Table: t.title, Row: row, Reason: "row index must be at least 1"}
	}

	_, cells, err := t.backend.rowAt(ctx, t.backend.db, t.title, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, t.backend.wrap(sheet.OpReadRow, t.title, err)
	}
	return cells, nil
}

func (t *table) ReadColumn(ctx context.Context, col int) ([]string, error) {
	if col < 1 {
		return nil, fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}

	grid, err := t.ReadAll(ctx)
	if err != nil {
		var be *sheet.BackendError
		if errors.As(err, &be) {
			be.Op = sheet.OpReadColumn
		}
		return nil, err
	}

	cells := make([]string, len(grid))
	for i, r := range grid {
		cells[i] = sheet.Cell(r, col)
	}
	return cells, nil
}

func (t *table) WriteCell(ctx context.Context, row, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}
	b := t.backend

	err := b.inTx(ctx, func(tx *sql.Tx) error {
		id, cells, err := b.rowAt(ctx, tx, t.title, row)
		if errors.Is(err, sql.ErrNoRows) {
			return &sheet.RowNotFoundError{Table: t.title, Row: row}
		}
		if err != nil {
			return err
		}

		cells = sheet.Pad(cells, col)
		cells[col-1] = value
		raw, err := encodeCells(cells)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, b.rebind(`UPDATE sheet_rows SET cells = ? WHERE id = ?`), raw, id)
		return err
	})
	return b.wrap(sheet.OpWriteCell, t.title, err)
}

func (t *table) AppendRow(ctx context.Context, values []string) error {
	b := t.backend
	raw, err := encodeCells(values)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, b.rebind(`INSERT INTO sheet_rows (sheet, cells) VALUES (?, ?)`), t.title, raw)
	return b.wrap(sheet.OpAppendRow, t.title, err)
}

func (t *table) DeleteRow(ctx context.Context, row int) error {
	b := t.backend

	err := b.inTx(ctx, func(tx *sql.Tx) error {
		id, _, err := b.rowAt(ctx, tx, t.title, row)
		if errors.Is(err, sql.ErrNoRows) {
			return &sheet.RowNotFoundError{Table: t.title, Row: row}
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, b.rebind(`DELETE FROM sheet_rows WHERE id = ?`), id)
		return err
	})
	return b.wrap(sheet.OpDeleteRow, t.title, err)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowAt returns the id and cells of the 1-based row of a sheet. It returns
// sql.ErrNoRows when the row is past the end.
func (b *Backend) rowAt(ctx context.Context, q querier, title string, row int) (int64, []string, error) {
	if row < 1 {
		return 0, nil, sql.ErrNoRows
	}

	var (
		id  int64
		raw string
	)
	err := q.QueryRowContext(ctx,
		b.rebind(`SELECT id, cells FROM sheet_rows WHERE sheet = ? ORDER BY id LIMIT 1 OFFSET ?`),
		title, row-1,
	).Scan(&id, &raw)
	if err != nil {
		return 0, nil, err
	}

	cells, err := decodeCells(raw)
	if err != nil {
		return 0, nil, err
	}
	return id, cells, nil
}

func (b *Backend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (b *Backend) rebind(query string) string {
	if b.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// wrap converts a driver error into a sheet.BackendError. Row errors pass
// through unchanged so callers can still match them.
func (b *Backend) wrap(op, title string, err error) error {
	if err == nil {
		return nil
	}
	var rnf *sheet.RowNotFoundError
	var be *sheet.BackendError
	if errors.As(err, &rnf) || errors.As(err, &be) {
		return err
	}
	return &sheet.BackendError{Op: op, Table: title, Kind: classify(err), Err: err}
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	raw, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(raw), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	return cells, nil
}
