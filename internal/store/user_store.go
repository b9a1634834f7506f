package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
)

// Errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore manages users. Credentials are not stored here.
type UserStore interface {
	// Create creates a new user.
	// Returns ErrUserAlreadyExists if the ID or email is taken.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
