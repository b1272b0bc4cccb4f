package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string // nil for accounts provisioned without a password
	FirstName    *string
	LastName     *string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is stored in the request context after the session is resolved.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	FirstName *string
	LastName  *string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdentityFor builds the public view of a user. The password hash is never copied.
func IdentityFor(u *User) *Identity {
	return &Identity{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
