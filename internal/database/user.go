package database

import (
	"context"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/models"
)

// UserStore is the SQL side of the user service. Implementations return
// *apperr.Error values: NotFound when no row matches, Duplicate on an email
// collision and Storage for everything else.
type UserStore interface {
	Insert(ctx context.Context, c models.Changes, now time.Time) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, c models.Changes, now time.Time) (*models.User, error)
	Delete(ctx context.Context, id int64) (*models.User, error)
	Search(ctx context.Context, term string) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Dialect() Dialect
}
