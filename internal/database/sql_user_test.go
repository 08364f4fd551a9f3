package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/database"
	"github.com/gochi-demo/user-rest-api/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, *database.SQLUserStore) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.InitSchema(ctx, db, database.SQLite{}))
	return db, database.NewSQLUserStore(db, database.SQLite{})
}

func changes(name, email string, age int) models.Changes {
	return models.Changes{Name: &name, Email: &email, Age: &age}
}

func stamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TestSQLUserStore_InsertAndGet(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	now := stamp()

	u, err := store.Insert(ctx, changes("Ann", "ann@x.com", 20), now)
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.Equal(t, 20, u.Age)
	assert.True(t, u.CreatedAt.Equal(now), "created_at %v != %v", u.CreatedAt, now)
	assert.True(t, u.CreatedAt.Equal(u.UpdatedAt))

	got, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
}

func TestSQLUserStore_InsertDuplicate(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, changes("Ann", "ann@x.com", 20), stamp())
	require.NoError(t, err)

	_, err = store.Insert(ctx, changes("Other", "ann@x.com", 30), stamp())
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err), "got %v", err)
	assert.Equal(t, "Email already exists", apperr.Message(err))
}

func TestSQLUserStore_InsertIncomplete(t *testing.T) {
	_, store := setupTestDB(t)
	name := "Ann"

	_, err := store.Insert(context.Background(), models.Changes{Name: &name}, stamp())
	assert.True(t, apperr.IsValidation(err))
}

func TestSQLUserStore_GetMissing(t *testing.T) {
	_, store := setupTestDB(t)

	_, err := store.Get(context.Background(), 999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSQLUserStore_ListOrdered(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		_, err := store.Insert(ctx, changes("User", email, 30), stamp())
		require.NoError(t, err)
	}

	users, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Less(t, users[0].ID, users[1].ID)
	assert.Less(t, users[1].ID, users[2].ID)
	assert.Equal(t, "c@x.com", users[0].Email)
}

func TestSQLUserStore_UpdateWritesOnlySuppliedColumns(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, changes("Ann", "ann@x.com", 20), stamp())
	require.NoError(t, err)

	age := 40
	later := created.UpdatedAt.Add(time.Second)
	updated, err := store.Update(ctx, created.ID, models.Changes{Age: &age}, later)
	require.NoError(t, err)

	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "ann@x.com", updated.Email)
	assert.Equal(t, 40, updated.Age)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.Equal(later))
}

func TestSQLUserStore_UpdateErrors(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, changes("Ann", "ann@x.com", 20), stamp())
	require.NoError(t, err)
	bob, err := store.Insert(ctx, changes("Bob", "bob@x.com", 30), stamp())
	require.NoError(t, err)

	email := "ann@x.com"
	_, err = store.Update(ctx, bob.ID, models.Changes{Email: &email}, stamp())
	assert.True(t, apperr.IsDuplicate(err), "got %v", err)

	age := 31
	_, err = store.Update(ctx, 999, models.Changes{Age: &age}, stamp())
	assert.True(t, apperr.IsNotFound(err), "got %v", err)
}

func TestSQLUserStore_Delete(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	created, err := store.Insert(ctx, changes("Ann", "ann@x.com", 20), stamp())
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Ann", deleted.Name)

	_, err = store.Get(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = store.Delete(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSQLUserStore_Search(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	ann, err := store.Insert(ctx, changes("Ann Lee", "ann@x.com", 20), stamp())
	require.NoError(t, err)
	_, err = store.Insert(ctx, changes("Bob", "bob@y.org", 30), stamp())
	require.NoError(t, err)
	joanna, err := store.Insert(ctx, changes("Joanna", "jo@x.com", 40), stamp())
	require.NoError(t, err)
	_, err = store.Insert(ctx, changes("Percent", "100_pct@x.com", 50), stamp())
	require.NoError(t, err)

	users, err := store.Search(ctx, "ANN")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ann.ID, users[0].ID)
	assert.Equal(t, joanna.ID, users[1].ID)

	users, err = store.Search(ctx, "Y.ORG")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)

	users, err = store.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	// Wildcards in the term are literal.
	users, err = store.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = store.Search(ctx, "0_p")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Percent", users[0].Name)
}

func TestSQLUserStore_SearchFoldsUnicode(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	emile, err := store.Insert(ctx, changes("ÉMILE Zola", "zola@x.com", 62), stamp())
	require.NoError(t, err)
	_, err = store.Insert(ctx, changes("Emile", "emile@x.com", 30), stamp())
	require.NoError(t, err)

	users, err := store.Search(ctx, "émile")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, emile.ID, users[0].ID)

	users, err = store.Search(ctx, "ÉMI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, emile.ID, users[0].ID)
}

func TestSQLUserStore_CountAndPing(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	assert.Equal(t, "SQLite", store.Dialect().Name())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Insert(ctx, changes("Ann", "ann@x.com", 20), stamp())
	require.NoError(t, err)

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLUserStore_StorageError(t *testing.T) {
	db, store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.DropSchema(ctx, db))

	_, err := store.List(ctx)
	require.Error(t, err)
	assert.True(t, apperr.IsStorage(err), "got %v", err)
	assert.Contains(t, err.Error(), "Error fetching users")
}

func TestSeed(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	n, err := database.Seed(ctx, db, database.SQLite{}, database.SampleUsers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Reseeding skips the emails already present.
	n, err = database.Seed(ctx, db, database.SQLite{}, database.SampleUsers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDialectFor(t *testing.T) {
	d, ok := database.DialectFor("pgx")
	require.True(t, ok)
	assert.Equal(t, "PostgreSQL", d.Name())

	d, ok = database.DialectFor("sqlite")
	require.True(t, ok)
	assert.Equal(t, "sqlite", d.DriverName())

	assert.Equal(t, "unicode_lower(name)", d.Lower("name"))
	assert.Equal(t, "LOWER(name)", database.Postgres{}.Lower("name"))

	_, ok = database.DialectFor("mysql")
	assert.False(t, ok)
}
