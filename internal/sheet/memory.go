package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend keeps every table in process memory.
//
// It follows the same row semantics as the remote backends, so it doubles as
// the reference implementation in tests. FailNext injects a one-shot failure
// for a given operation.
type MemoryBackend struct {
	mu     sync.Mutex
	tables map[string]*memoryTable
	faults map[string]error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables: make(map[string]*memoryTable),
		faults: make(map[string]error),
	}
}

// EnsureTable creates the table if needed and rewrites its header row.
func (b *MemoryBackend) EnsureTable(ctx context.Context, title string, headers []string) (Table, error) {
	if err := b.fault(OpEnsureTable, title); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[title]
	if !ok {
		t = &memoryTable{backend: b, title: title}
		b.tables[title] = t
	}

	header := append([]string(nil), headers...)
	if len(t.rows) == 0 {
		t.rows = [][]string{header}
	} else {
		t.rows[0] = header
	}
	return t, nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }

// FailNext makes the next call of op return err, or a transient BackendError
// when err is nil.
func (b *MemoryBackend) FailNext(op string, err error) {
	if err == nil {
		err = fmt.Errorf("injected %s failure", op)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[op] = err
}

// Rows returns a copy of every row in the table, or nil if it does not exist.
func (b *MemoryBackend) Rows(title string) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[title]
	if !ok {
		return nil
	}
	return copyRows(t.rows)
}

// Seed replaces the data rows of an existing table. Row 1 is kept.
func (b *MemoryBackend) Seed(title string, rows ...[]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[title]
	if !ok {
		t = &memoryTable{backend: b, title: title, rows: [][]string{{}}}
		b.tables[title] = t
	}
	t.rows = append(t.rows[:1], copyRows(rows)...)
}

func (b *MemoryBackend) fault(op, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err, ok := b.faults[op]
	if !ok {
		return nil
	}
	delete(b.faults, op)
	return &BackendError{Op: op, Table: title, Kind: KindTransient, Err: err}
}

type memoryTable struct {
	backend *MemoryBackend
	title   string
	rows    [][]string
}

func (t *memoryTable) Title() string { return t.title }

func (t *memoryTable) ReadAll(ctx context.Context) ([][]string, error) {
	if err := t.backend.fault(OpReadAll, t.title); err != nil {
		return nil, err
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	return copyRows(t.rows), nil
}

func (t *memoryTable) ReadRow(ctx context.Context, row int) ([]string, error) {
	if err := t.backend.fault(OpReadRow, t.title); err != nil {
		return nil, err
	}
	if row < 1 {
		return nil, &RowNotFoundError{Table: t.title, Row: row, Reason: "row index must be at least 1"}
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if row > len(t.rows) {
		return nil, nil
	}
	return append([]string(nil), t.rows[row-1]...), nil
}

func (t *memoryTable) ReadColumn(ctx context.Context, col int) ([]string, error) {
	if err := t.backend.fault(OpReadColumn, t.title); err != nil {
		return nil, err
	}
	if col < 1 {
		return nil, fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	cells := make([]string, len(t.rows))
	for i, r := range t.rows {
		cells[i] = Cell(r, col)
	}
	return cells, nil
}

func (t *memoryTable) WriteCell(ctx context.Context, row, col int, value string) error {
	if err := t.backend.fault(OpWriteCell, t.title); err != nil {
		return err
	}
	if col < 1 {
		return fmt.Errorf("table %q: column index must be at least 1, got %d", t.title, col)
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if row < 1 || row > len(t.rows) {
		return &RowNotFoundError{Table: t.title, Row: row}
	}
	r := Pad(t.rows[row-1], col)
	r[col-1] = value
	t.rows[row-1] = r
	return nil
}

func (t *memoryTable) AppendRow(ctx context.Context, values []string) error {
	if err := t.backend.fault(OpAppendRow, t.title); err != nil {
		return err
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

func (t *memoryTable) DeleteRow(ctx context.Context, row int) error {
	if err := t.backend.fault(OpDeleteRow, t.title); err != nil {
		return err
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if row < 1 || row > len(t.rows) {
		return &RowNotFoundError{Table: t.title, Row: row}
	}
	t.rows = append(t.rows[:row-1], t.rows[row:]...)
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
