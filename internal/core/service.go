package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// DefaultLoanDays is the loan period applied when a checkout has no due date.
const DefaultLoanDays = 14

// Service provides the catalog operations over the two bound tables.
//
// A Service is meant for a single writer. It holds no locks of its own and
// every method talks to the backend synchronously.
type Service struct {
	tables   *TableRegistry
	now      func() time.Time
	loanDays int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLoanDays sets the default loan period in days.
func WithLoanDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.loanDays = days
		}
	}
}

// NewService creates a Service over already-open tables.
func NewService(tables *TableRegistry, opts ...Option) *Service {
	s := &Service{
		tables:   tables,
		now:      time.Now,
		loanDays: DefaultLoanDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open ensures both tables exist in backend and returns a Service over them.
func Open(ctx context.Context, backend sheet.Backend, opts ...Option) (*Service, error) {
	tables, err := OpenTables(ctx, backend)
	if err != nil {
		return nil, err
	}
	return NewService(tables, opts...), nil
}

// Tables returns the bound tables.
func (s *Service) Tables() *TableRegistry {
	return s.tables
}

// Today returns the current date according to the service clock.
func (s *Service) Today() time.Time {
	return truncateDay(s.now())
}

// Ping reads the header row of every table and checks it still names the
// ISBN column.
func (s *Service) Ping(ctx context.Context) error {
	for _, bt := range s.tables.All() {
		if _, err := column(ctx, bt, schema.ISBN); err != nil {
			return fmt.Errorf("ping %s: %w", bt.Key(), err)
		}
	}
	return nil
}

// validator returns a Validator sharing the service clock.
func (s *Service) validator(searchMode bool) Validator {
	return Validator{Now: s.now, SearchMode: searchMode}
}

// column resolves the header column of field f in bt.
func column(ctx context.Context, bt BoundTable, f schema.Field) (int, error) {
	spec, ok := bt.Schema.Spec(f)
	if !ok {
		return 0, &sheet.HeaderNotFoundError{Table: bt.Key(), Header: string(f)}
	}
	return sheet.FindHeaderColumn(ctx, bt.Handle, spec.Label)
}

// liveRow re-reads the row a record was found at and checks that it still
// holds the same ISBN. Every write goes through it so a stale cell_row never
// changes the wrong row.
func liveRow(ctx context.Context, bt BoundTable, rec Record) ([]string, error) {
	if rec.CellRow < 2 {
		return nil, &sheet.RowNotFoundError{Table: bt.Key(), Row: rec.CellRow, Reason: "record has no cell row"}
	}

	row, err := bt.Handle.ReadRow(ctx, rec.CellRow)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &sheet.RowNotFoundError{Table: bt.Key(), Row: rec.CellRow, Reason: "row no longer exists"}
	}

	isbnCol, err := column(ctx, bt, schema.ISBN)
	if err != nil {
		return nil, err
	}
	if got := NormalizeISBN(sheet.Cell(row, isbnCol)); got != NormalizeISBN(rec.ISBN) {
		return nil, &sheet.RowNotFoundError{
			Table:  bt.Key(),
			Row:    rec.CellRow,
			Reason: fmt.Sprintf("row now holds isbn %q, expected %q", got, rec.ISBN),
		}
	}
	return row, nil
}

// copiesOf reads the copies counter from a row, or 0 when absent or not a number.
func copiesOf(row []string, col int) (int64, bool) {
	if col == 0 {
		return 0, false
	}
	n, ok := ParseInt(sheet.Cell(row, col))
	if !ok {
		return 0, false
	}
	return n, true
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
