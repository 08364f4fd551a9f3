package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// InitSchema creates the users table if it is missing.
func InitSchema(ctx context.Context, db *sqlx.DB, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, dialect.CreateTableSQL()); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	log.Ctx(ctx).Info().Str("database", dialect.Name()).Msg("users table ready")
	return nil
}

// DropSchema removes the users table and every row in it.
func DropSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	return nil
}

type SeedUser struct {
	Name  string
	Email string
	Age   int
}

var SampleUsers = []SeedUser{
	{Name: "John Doe", Email: "john@example.com", Age: 30},
	{Name: "Jane Smith", Email: "jane@example.com", Age: 25},
	{Name: "Bob Johnson", Email: "bob@example.com", Age: 35},
}

// Seed inserts users, skipping any whose email is already taken, and
// returns the resulting row count.
func Seed(ctx context.Context, db *sqlx.DB, dialect Dialect, users []SeedUser) (int, error) {
	if len(users) > 0 {
		builder := sq.Insert(usersTable).
			Columns("name", "email", "age").
			PlaceholderFormat(dialect.PlaceholderFormat()).
			Suffix("ON CONFLICT (email) DO NOTHING")
		for _, u := range users {
			builder = builder.Values(u.Name, u.Email, u.Age)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return 0, err
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert sample users: %w", err)
		}
	}

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
