package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/models"
	"github.com/jmoiron/sqlx"
)

const usersTable = "users"

var userColumns = []string{"id", "name", "email", "age", "created_at", "updated_at"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type SQLUserStore struct {
	db      *sqlx.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	obs     *observer
}

var _ UserStore = (*SQLUserStore)(nil)

func NewSQLUserStore(db *sqlx.DB, dialect Dialect, opts ...Option) *SQLUserStore {
	return &SQLUserStore{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.PlaceholderFormat()),
		obs:     newObserver(dialect.DriverName(), opts...),
	}
}

func (s *SQLUserStore) Dialect() Dialect { return s.dialect }

func (s *SQLUserStore) Insert(ctx context.Context, c models.Changes, now time.Time) (u *models.User, err error) {
	ctx, done := s.obs.begin(ctx, "insert")
	defer func() { done(err) }()

	if c.Name == nil || c.Email == nil || c.Age == nil {
		return nil, apperr.Validation("Name, email and age are required")
	}

	query, args, err := s.sb.Insert(usersTable).
		Columns("name", "email", "age", "created_at", "updated_at").
		Values(*c.Name, *c.Email, *c.Age, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error creating user")
	}

	var id int64
	if err = s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, s.classify(err, "Error creating user")
	}
	return s.get(ctx, id)
}

func (s *SQLUserStore) List(ctx context.Context) (users []models.User, err error) {
	ctx, done := s.obs.begin(ctx, "list")
	defer func() { done(err) }()

	query, args, err := s.sb.Select(userColumns...).From(usersTable).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error fetching users")
	}

	users = []models.User{}
	if err = s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, s.classify(err, "Error fetching users")
	}
	return users, nil
}

func (s *SQLUserStore) Get(ctx context.Context, id int64) (u *models.User, err error) {
	ctx, done := s.obs.begin(ctx, "get")
	defer func() { done(err) }()

	return s.get(ctx, id)
}

func (s *SQLUserStore) get(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := s.sb.Select(userColumns...).From(usersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error fetching user")
	}

	var u models.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, s.classify(err, "Error fetching user")
	}
	return &u, nil
}

// Update writes only the columns set in c and always refreshes updated_at.
// A row deleted since the caller read it yields NotFound.
func (s *SQLUserStore) Update(ctx context.Context, id int64, c models.Changes, now time.Time) (u *models.User, err error) {
	ctx, done := s.obs.begin(ctx, "update")
	defer func() { done(err) }()

	builder := s.sb.Update(usersTable)
	if c.Name != nil {
		builder = builder.Set("name", *c.Name)
	}
	if c.Email != nil {
		builder = builder.Set("email", *c.Email)
	}
	if c.Age != nil {
		builder = builder.Set("age", *c.Age)
	}
	query, args, err := builder.Set("updated_at", now).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error updating user")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, s.classify(err, "Error updating user")
	}
	if err = affected(res, "Error updating user"); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *SQLUserStore) Delete(ctx context.Context, id int64) (u *models.User, err error) {
	ctx, done := s.obs.begin(ctx, "delete")
	defer func() { done(err) }()

	u, err = s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	query, args, err := s.sb.Delete(usersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error deleting user")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, s.classify(err, "Error deleting user")
	}
	if err = affected(res, "Error deleting user"); err != nil {
		return nil, err
	}
	return u, nil
}

// Search matches term as a literal, case-insensitive substring of name or
// email.
func (s *SQLUserStore) Search(ctx context.Context, term string) (users []models.User, err error) {
	ctx, done := s.obs.begin(ctx, "search")
	defer func() { done(err) }()

	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	query, args, err := s.sb.Select(userColumns...).
		From(usersTable).
		Where(sq.Or{
			sq.Expr(s.dialect.Lower("name")+` LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(s.dialect.Lower("email")+` LIKE ? ESCAPE '\'`, pattern),
		}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Storage(err, "Error searching users")
	}

	users = []models.User{}
	if err = s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, s.classify(err, "Error searching users")
	}
	return users, nil
}

func (s *SQLUserStore) Count(ctx context.Context) (n int, err error) {
	ctx, done := s.obs.begin(ctx, "count")
	defer func() { done(err) }()

	query, args, err := s.sb.Select("COUNT(*)").From(usersTable).ToSql()
	if err != nil {
		return 0, apperr.Storage(err, "Error counting users")
	}
	if err = s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, s.classify(err, "Error counting users")
	}
	return n, nil
}

func (s *SQLUserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLUserStore) classify(err error, msg string) error {
	switch {
	case s.dialect.IsUniqueViolation(err):
		return apperr.Duplicate(err)
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound()
	default:
		return apperr.Storage(err, msg)
	}
}

func affected(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage(err, msg)
	}
	if n == 0 {
		return apperr.NotFound()
	}
	return nil
}
