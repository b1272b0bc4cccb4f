package session

import "time"

// SetClock overrides the time source of a MemoryStore.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

// SetClock overrides the time source of a Manager.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }
