package sqlgrid

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/sheet"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// classify maps a driver error to a sheet.Kind.
func classify(err error) sheet.Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn):
		return sheet.KindTransient
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return sheet.KindTransient
		case sqlite3.ErrPerm, sqlite3.ErrReadonly, sqlite3.ErrAuth:
			return sheet.KindPermission
		case sqlite3.ErrCantOpen, sqlite3.ErrNotFound:
			return sheet.KindNotFound
		}
		return sheet.KindUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPG(pgErr.Code)
	}
	if pgconn.Timeout(err) {
		return sheet.KindTransient
	}
	return sheet.KindUnknown
}

// classifyPG maps a PostgreSQL SQLSTATE.
func classifyPG(code string) sheet.Kind {
	switch code {
	case "40001", "40P01", "53300", "57P01", "57P03":
		return sheet.KindTransient
	case "42501", "28000", "28P01":
		return sheet.KindPermission
	case "3D000", "42P01":
		return sheet.KindNotFound
	}
	// Class 08: connection exceptions.
	if strings.HasPrefix(code, "08") {
		return sheet.KindTransient
	}
	return sheet.KindUnknown
}
