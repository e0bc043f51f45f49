package sqlgrid

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres returns a grid backend over an existing pgx pool. The pool is
// not closed by Backend.Close.
func OpenPostgres(ctx context.Context, pool *pgxpool.Pool) (*Backend, error) {
	db := stdlib.OpenDBFromPool(pool)

	b, err := New(ctx, db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}
