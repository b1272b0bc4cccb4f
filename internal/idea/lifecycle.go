// Package idea implements the business idea lifecycle: submission in the
// pending state, admin review between pending, approved and rejected, and
// unguarded vote counters.
package idea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	TitleMinLength       = 5
	TitleMaxLength       = 256
	DescriptionMinLength = 20
)

var (
	// ErrForbiddenTransition is returned when a non-admin attempts an admin-only change.
	ErrForbiddenTransition = errors.New("operation requires admin")

	// ErrInvalidIdea is returned when submitted content fails length checks.
	ErrInvalidIdea = errors.New("invalid idea")
)

// Actor is the caller on whose behalf a lifecycle operation runs.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// SubmitInput is the client-supplied content of a new idea.
type SubmitInput struct {
	Title       string
	Description string
}

// Lifecycle enforces who may move an idea between states.
type Lifecycle struct {
	repo Repository
}

// NewLifecycle creates a Lifecycle over repo.
func NewLifecycle(repo Repository) *Lifecycle {
	return &Lifecycle{repo: repo}
}

// RuleError names the content field that broke a length rule. It matches
// ErrInvalidIdea with errors.Is.
type RuleError struct {
	Field   string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return ErrInvalidIdea }

// CheckTitle reports whether title has between TitleMinLength and
// TitleMaxLength characters.
func CheckTitle(title string) error {
	n := utf8.RuneCountInString(title)
	switch {
	case n < TitleMinLength:
		return &RuleError{Field: "title", Message: fmt.Sprintf("Title must be at least %d characters.", TitleMinLength)}
	case n > TitleMaxLength:
		return &RuleError{Field: "title", Message: fmt.Sprintf("Title cannot exceed %d characters.", TitleMaxLength)}
	}
	return nil
}

// CheckDescription reports whether description has at least DescriptionMinLength characters.
func CheckDescription(description string) error {
	if utf8.RuneCountInString(description) < DescriptionMinLength {
		return &RuleError{Field: "description", Message: fmt.Sprintf("Description must be at least %d characters.", DescriptionMinLength)}
	}
	return nil
}

// Submit stores a new idea owned by actor. Status is always pending and both
// counters start at zero.
func (l *Lifecycle) Submit(ctx context.Context, actor Actor, in SubmitInput) (*Idea, error) {
	if err := CheckTitle(in.Title); err != nil {
		return nil, err
	}
	if err := CheckDescription(in.Description); err != nil {
		return nil, err
	}

	idea := &Idea{
		UserID:      actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		Status:      StatusPending,
	}

	if err := l.repo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("creating idea: %w", err)
	}

	slog.Info("idea submitted", "idea_id", idea.ID, "user_id", actor.UserID)
	return idea, nil
}

// Approved returns the public ranking of approved ideas.
func (l *Lifecycle) Approved(ctx context.Context) ([]Idea, error) {
	ideas, err := l.repo.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing approved ideas: %w", err)
	}
	return ideas, nil
}

// Vote increments the chosen counter by one. Repeated and self votes are counted.
func (l *Lifecycle) Vote(ctx context.Context, id uuid.UUID, vote Vote) (*Idea, error) {
	idea, err := l.repo.IncrementVotes(ctx, id, vote)
	if err != nil {
		if errors.Is(err, ErrIdeaNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("recording vote: %w", err)
	}
	return idea, nil
}

// All lists ideas of every status for review.
func (l *Lifecycle) All(ctx context.Context, actor Actor, filter ListFilter) ([]Idea, error) {
	if !actor.IsAdmin {
		return nil, ErrForbiddenTransition
	}
	ideas, err := l.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing ideas: %w", err)
	}
	return ideas, nil
}

// Get returns a single idea for review.
func (l *Lifecycle) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Idea, error) {
	if !actor.IsAdmin {
		return nil, ErrForbiddenTransition
	}
	return l.repo.GetByID(ctx, id)
}

// ChangeStatus moves an idea to any status, including the one it is in.
func (l *Lifecycle) ChangeStatus(ctx context.Context, actor Actor, id uuid.UUID, to Status) (*Idea, error) {
	if !actor.IsAdmin {
		return nil, ErrForbiddenTransition
	}
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	idea, err := l.repo.SetStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	slog.Info("idea status changed", "idea_id", id, "status", to, "admin_id", actor.UserID)
	return idea, nil
}

// Edit applies an admin content edit. Title and description are checked the
// same way as at submission.
func (l *Lifecycle) Edit(ctx context.Context, actor Actor, id uuid.UUID, fields UpdateFields) (*Idea, error) {
	if !actor.IsAdmin {
		return nil, ErrForbiddenTransition
	}
	if fields.Title != nil {
		if err := CheckTitle(*fields.Title); err != nil {
			return nil, err
		}
	}
	if fields.Description != nil {
		if err := CheckDescription(*fields.Description); err != nil {
			return nil, err
		}
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	return l.repo.Update(ctx, id, fields)
}

// Remove deletes an idea unconditionally.
func (l *Lifecycle) Remove(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return ErrForbiddenTransition
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("idea deleted", "idea_id", id, "admin_id", actor.UserID)
	return nil
}
