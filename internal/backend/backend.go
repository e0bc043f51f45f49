// Package backend opens the table store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/config"
	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/JonMunkholm/booksheet/internal/sheet/gsheets"
	"github.com/JonMunkholm/booksheet/internal/sheet/sqlgrid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects to the backend named by cfg.Backend.Kind. The caller owns
// the result and must Close it.
func Open(ctx context.Context, cfg *config.Config) (sheet.Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendSheets:
		b, err := gsheets.Open(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("open google sheets: %w", err)
		}
		slog.Info("using google sheets backend", "spreadsheet_id", cfg.Sheets.SpreadsheetID)
		return b, nil

	case config.BackendPostgres:
		return openPostgres(ctx, &cfg.Database)

	case config.BackendSQLite:
		b, err := sqlgrid.OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLite.Path, err)
		}
		slog.Info("using sqlite backend", "path", cfg.SQLite.Path)
		return b, nil

	case config.BackendMemory:
		slog.Warn("using in-memory backend; data is lost on exit")
		return sheet.NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
}

// pgBackend closes the pool together with the grid.
type pgBackend struct {
	*sqlgrid.Backend
	pool *pgxpool.Pool
}

func (b *pgBackend) Close() error {
	err := b.Backend.Close()
	b.pool.Close()
	return err
}

func openPostgres(ctx context.Context, cfg *config.DatabaseConfig) (sheet.Backend, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	grid, err := sqlgrid.OpenPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("using postgres backend", "database", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("using postgres backend")
	}
	return &pgBackend{Backend: grid, pool: pool}, nil
}
