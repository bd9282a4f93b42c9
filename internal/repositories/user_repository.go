package repositories

import (
	"errors"

	"farmtoclick/internal/models"
)

var (
	// ErrNotFound is wrapped by repository lookups that match no record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped when an insert breaks a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
	ListUnverified(roles ...string) ([]models.User, error)
	ListVerified(role string) ([]models.User, error)
}
