package idea

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the review state of an idea.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// ErrInvalidStatus is returned when a value is not one of Statuses.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Vote selects which counter a vote increments.
type Vote int

const (
	Upvote Vote = iota
	Downvote
)

// Idea represents a row in the business_ideas table.
type Idea struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Status      Status
	Upvotes     int
	Downvotes   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter holds optional filters for the admin listing.
type ListFilter struct {
	Status *Status
}

// UpdateFields holds admin-editable fields. Nil fields are not updated.
type UpdateFields struct {
	Title       *string
	Description *string
	Status      *Status
}

// Empty reports whether no field is set.
func (f UpdateFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil
}
