package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a credential check fails. It does not
// reveal whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// Credentials are the values a client presents to log in.
type Credentials struct {
	Email    string
	Password string
}

// Verifier checks credentials and returns the matching user.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, creds Credentials) (*User, error)
}

// PasswordVerifier checks an email and password against the stored bcrypt hash.
type PasswordVerifier struct {
	users UserRepository
}

// NewPasswordVerifier creates a Verifier for local email/password accounts.
func NewPasswordVerifier(users UserRepository) *PasswordVerifier {
	return &PasswordVerifier{users: users}
}

func (v *PasswordVerifier) Name() string { return "local" }

// Verify returns ErrInvalidCredentials for unknown emails, password-less
// accounts and mismatched passwords alike.
func (v *PasswordVerifier) Verify(ctx context.Context, creds Credentials) (*User, error) {
	u, err := v.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if u.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
