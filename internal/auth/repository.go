package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when another user already owns the email.
var ErrDuplicateEmail = errors.New("user already exists")

// UserRepository provides operations on the users table.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	CountAll(ctx context.Context) (int, error)
	// Upsert inserts the user or updates the existing row with the same id.
	// CreatedAt and UpdatedAt are written back into u.
	Upsert(ctx context.Context, u *User) error
}
