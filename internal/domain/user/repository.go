package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// Save persists a new user; a taken email yields a ConflictError.
	Save(ctx context.Context, user *User) error
}
