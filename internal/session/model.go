// Package session issues, resolves and destroys server-side sessions that are
// correlated with clients through a signed cookie.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Data is the payload serialized into the sess column.
type Data struct {
	UserID *uuid.UUID `json:"userId,omitempty"`
}

// Session is a row in the sessions table. Expire is absolute and does not
// slide with activity.
type Session struct {
	ID     string
	Data   Data
	Expire time.Time
}

// IsExpired reports whether the session expired at or before now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.Expire)
}
