package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when no session row exists for the id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session exists but is past its expiry.
	ErrSessionExpired = errors.New("session expired")
)

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Save replaces the payload of an existing session.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every expired session and returns how many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}
