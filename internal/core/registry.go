package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/booksheet/internal/schema"
	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// BoundTable pairs a table layout with an open handle.
type BoundTable struct {
	Schema schema.Table
	Handle sheet.Table
}

// Key returns the table key ("stock" or "borrowed").
func (b BoundTable) Key() string {
	return b.Schema.Key
}

// TableRegistry holds the two open catalog tables.
//
// Both tables are opened once through Backend.EnsureTable, which creates a
// missing worksheet and rewrites the header row, so a registry never points
// at a table with a stale header.
type TableRegistry struct {
	stock    BoundTable
	borrowed BoundTable
}

// OpenTables ensures both tables exist in backend and binds them.
func OpenTables(ctx context.Context, backend sheet.Backend) (*TableRegistry, error) {
	stock, err := bind(ctx, backend, schema.Stock)
	if err != nil {
		return nil, err
	}
	borrowed, err := bind(ctx, backend, schema.Borrowed)
	if err != nil {
		return nil, err
	}
	return &TableRegistry{stock: stock, borrowed: borrowed}, nil
}

func bind(ctx context.Context, backend sheet.Backend, t schema.Table) (BoundTable, error) {
	handle, err := backend.EnsureTable(ctx, t.Title, t.Headers())
	if err != nil {
		return BoundTable{}, fmt.Errorf("open table %s: %w", t.Key, err)
	}
	return BoundTable{Schema: t, Handle: handle}, nil
}

// Stock returns the stock table.
func (r *TableRegistry) Stock() BoundTable { return r.stock }

// Borrowed returns the borrowed table.
func (r *TableRegistry) Borrowed() BoundTable { return r.borrowed }

// Lookup returns a table by key.
func (r *TableRegistry) Lookup(key string) (BoundTable, error) {
	switch key {
	case schema.Stock.Key:
		return r.stock, nil
	case schema.Borrowed.Key:
		return r.borrowed, nil
	}
	return BoundTable{}, fmt.Errorf("%w: %q", ErrUnknownTable, key)
}

// All returns both tables in key order.
func (r *TableRegistry) All() []BoundTable {
	return []BoundTable{r.borrowed, r.stock}
}
