package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username (case-insensitive)
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks whether a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}
