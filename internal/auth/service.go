package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields accepted at self-registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// CreateUserInput carries the fields an admin may set when provisioning a user.
type CreateUserInput struct {
	ID        *uuid.UUID
	Email     string
	FirstName *string
	LastName  *string
	IsAdmin   bool
}

// Service provides credential and account operations.
type Service struct {
	users      UserRepository
	verifier   Verifier
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(users UserRepository, verifier Verifier, bcryptCost int) *Service {
	return &Service{
		users:      users,
		verifier:   verifier,
		bcryptCost: bcryptCost,
	}
}

// HashPassword returns the bcrypt hash of password at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// Register creates a new account. The first user ever registered becomes an
// admin; the check is a plain count and is not serialized against concurrent
// registrations.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	count, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: &hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsAdmin:      count == 0,
	}

	if err := s.users.Upsert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if u.IsAdmin {
		slog.Info("bootstrap admin registered", "user_id", u.ID)
	}

	return u, nil
}

// Login verifies credentials through the configured Verifier.
func (s *Service) Login(ctx context.Context, creds Credentials) (*User, error) {
	u, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser provisions or updates an account without a password. When the id
// refers to an existing user, its password hash and creation time are kept.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	u := &User{
		ID:        uuid.New(),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsAdmin:   in.IsAdmin,
	}

	if in.ID != nil {
		u.ID = *in.ID
		existing, err := s.users.GetByID(ctx, *in.ID)
		switch {
		case err == nil:
			u.PasswordHash = existing.PasswordHash
		case !errors.Is(err, ErrUserNotFound):
			return nil, fmt.Errorf("fetching user: %w", err)
		}
	}

	if err := s.users.Upsert(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	return u, nil
}

// Identity resolves a user id to its public Identity. ErrUserNotFound is
// returned unchanged when the user no longer exists.
func (s *Service) Identity(ctx context.Context, userID uuid.UUID) (*Identity, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return IdentityFor(u), nil
}
