// Package sheet defines the row-indexed table abstraction the catalog is
// stored in.
//
// A Table is a 2-D grid of strings addressed by 1-based row and column
// numbers. Row 1 holds header labels; data starts at row 2. There are no
// transactions, keys or constraints: every call is applied immediately and
// deleting a row shifts every following row up by one.
//
// Backends live in subpackages (gsheets, sqlgrid). [NewMemoryBackend] is an
// in-process grid used by tests and the "memory" backend setting.
package sheet

import "context"

// Table is a handle to one worksheet.
//
// Rows and columns are 1-based. ReadRow returns nil for a row past the end
// of the data; WriteCell and DeleteRow require the row to exist.
type Table interface {
	// Title returns the worksheet title.
	Title() string

	// ReadAll returns every row including the header.
	ReadAll(ctx context.Context) ([][]string, error)

	// ReadRow returns the cells of one row. Trailing empty cells may be omitted.
	ReadRow(ctx context.Context, row int) ([]string, error)

	// ReadColumn returns the cells of one column from row 1 down.
	ReadColumn(ctx context.Context, col int) ([]string, error)

	// WriteCell overwrites a single cell.
	WriteCell(ctx context.Context, row, col int, value string) error

	// AppendRow adds a row after the last non-empty row.
	AppendRow(ctx context.Context, values []string) error

	// DeleteRow removes a row, shifting later rows up.
	DeleteRow(ctx context.Context, row int) error
}

// Backend opens tables in a spreadsheet-like store.
type Backend interface {
	// EnsureTable returns the table with the given title, creating it when
	// missing. The header row is always rewritten with headers.
	EnsureTable(ctx context.Context, title string, headers []string) (Table, error)

	// Close releases backend resources.
	Close() error
}

// Operation names reported in BackendError.Op.
const (
	OpEnsureTable = "ensure_table"
	OpReadAll     = "read_all"
	OpReadRow     = "read_row"
	OpReadColumn  = "read_column"
	OpWriteCell   = "write_cell"
	OpAppendRow   = "append_row"
	OpDeleteRow   = "delete_row"
)

// Cell returns row[col-1], or "" when the row is shorter than col.
func Cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

// Pad returns row extended with empty cells to at least width columns.
func Pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
