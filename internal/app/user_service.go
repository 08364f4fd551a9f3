package app

import (
	"context"
	"strings"
	"time"

	"github.com/gochi-demo/user-rest-api/internal/apperr"
	"github.com/gochi-demo/user-rest-api/internal/database"
	"github.com/gochi-demo/user-rest-api/internal/models"
)

// App holds the process-wide dependencies handed to the HTTP handlers.
type App struct {
	Users *UserService
	Store database.UserStore
}

func New(store database.UserStore) *App {
	return &App{
		Users: NewUserService(store),
		Store: store,
	}
}

// UserService validates user data and applies it to the store.
type UserService struct {
	store database.UserStore
	now   func() time.Time
}

func NewUserService(store database.UserStore) *UserService {
	return &UserService{store: store, now: now}
}

// Timestamps are kept at the precision every supported store can hold so a
// value read back compares equal to the value written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *UserService) Create(ctx context.Context, data models.Fields) (*models.User, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	return s.store.Insert(ctx, data.Changes(), s.now())
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Get(ctx, id)
}

// Update overlays data on the stored user, validates the result as a whole
// and writes only the supplied fields. It backs both full and partial
// updates.
func (s *UserService) Update(ctx context.Context, id int64, data models.Fields) (*models.User, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validate(models.Merge(*existing, data)); err != nil {
		return nil, err
	}

	updated := s.now()
	if updated.Before(existing.UpdatedAt) {
		updated = existing.UpdatedAt
	}
	return s.store.Update(ctx, id, data.Changes(), updated)
}

func (s *UserService) Delete(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Delete(ctx, id)
}

func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	return s.store.Search(ctx, term)
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func validate(f models.Fields) error {
	v := models.Validate(f)
	if v.Valid {
		return nil
	}
	return apperr.Validation(strings.Join(v.Errors, ", "))
}
