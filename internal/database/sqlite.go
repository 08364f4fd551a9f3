package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite's built-in LOWER only folds ASCII letters.
const unicodeLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

type SQLite struct{}

func (SQLite) Name() string { return "SQLite" }
func (SQLite) DriverName() string { return "sqlite" }
func (SQLite) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (SQLite) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		age INTEGER NOT NULL CHECK (age >= 0 AND age <= 150),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
}

func (SQLite) Lower(column string) string { return unicodeLower + "(" + column + ")" }

func (SQLite) IsUniqueViolation(err error) bool {
	var sErr *sqlite.Error
	if !errors.As(err, &sErr) {
		return false
	}
	if sErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Connections without extended result codes only report the primary code.
	return sErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sErr.Error(), "UNIQUE constraint failed")
}

// NewSQLite opens the database file at path. ":memory:" gives a private
// in-memory database, which only survives on a single connection.
// Timestamps are written in the format SQLite's date functions read.
func NewSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_time_format=sqlite"
	}

	db, err := sqlx.ConnectContext(ctx, SQLite{}.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
