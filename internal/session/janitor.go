package session

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically removes expired sessions from a Store.
type Janitor struct {
	store    Store
	interval time.Duration
}

// NewJanitor creates a new Janitor.
func NewJanitor(store Store, interval time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
	}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	slog.Info("session janitor started", "interval", j.interval.String())
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep deletes expired sessions once and returns how many were removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	count, err := j.store.DeleteExpired(ctx)
	if err != nil {
		slog.Error("session janitor: failed to delete expired sessions", "error", err)
		return 0
	}
	if count > 0 {
		slog.Info("session janitor: removed expired sessions", "count", count)
	}
	return count
}
