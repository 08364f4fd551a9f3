package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Dialect covers the SQL differences between the supported stores.
type Dialect interface {
	// Name is the human readable store name reported by /health.
	Name() string
	// DriverName is the database/sql driver the dialect is registered under.
	DriverName() string
	PlaceholderFormat() sq.PlaceholderFormat
	// CreateTableSQL creates the users table when it does not exist.
	CreateTableSQL() string
	// Lower wraps a text column in the store's Unicode-aware lower-casing.
	Lower(column string) string
	// IsUniqueViolation reports whether err is the store rejecting a
	// duplicate value for a UNIQUE column.
	IsUniqueViolation(err error) bool
}

// DialectFor maps a configured driver name to its dialect.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return Postgres{}, true
	case "sqlite", "sqlite3":
		return SQLite{}, true
	default:
		return nil, false
	}
}

// Open connects to source, a pgx URL or an SQLite path depending on the
// dialect.
func Open(ctx context.Context, dialect Dialect, source string) (*sqlx.DB, error) {
	switch dialect.(type) {
	case SQLite:
		return NewSQLite(ctx, source)
	case Postgres:
		return NewPostgres(ctx, source)
	default:
		return nil, fmt.Errorf("unsupported dialect %s", dialect.Name())
	}
}
