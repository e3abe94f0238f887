// Package store owns persistence of user records. The rest of the
// application only sees the UserStore interface and the sentinel errors.
package store

import (
	"context"
	"errors"

	"github.com/ecomarket/ecomarket-api/internal/models"
)

var (
	// ErrNotFound means no record matched the given id or email.
	ErrNotFound = errors.New("store: user not found")
	// ErrDuplicateEmail is the translation of the storage-level unique
	// constraint on users.email.
	ErrDuplicateEmail = errors.New("store: email already exists")
)

// ListFilter narrows and pages an admin user listing.
type ListFilter struct {
	Page  int
	Limit int
	Role  models.Role // empty means all roles
}

// UserStore is the credential store.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)

	// SetActive flips the soft-delete flag. Idempotent.
	SetActive(ctx context.Context, id int64, active bool) error

	// TouchLastLogin records a successful login timestamp.
	TouchLastLogin(ctx context.Context, id int64) error

	List(ctx context.Context, f ListFilter) ([]models.User, int64, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	Stats(ctx context.Context) (models.UserStats, error)
}
