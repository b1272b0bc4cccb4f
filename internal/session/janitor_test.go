package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/session"
)

func TestJanitor_Sweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	uid := uuid.New()

	now := time.Now()
	require.NoError(t, store.Create(ctx, &session.Session{ID: "live", Data: session.Data{UserID: &uid}, Expire: now.Add(time.Hour)}))
	require.NoError(t, store.Create(ctx, &session.Session{ID: "dead", Data: session.Data{UserID: &uid}, Expire: now.Add(-time.Minute)}))

	j := session.NewJanitor(store, time.Minute)
	assert.Equal(t, 1, j.Sweep(ctx))
	assert.Equal(t, 0, j.Sweep(ctx))

	_, err := store.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "dead")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestJanitor_StartStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	store := session.NewMemoryStore()
	require.NoError(t, store.Create(ctx, &session.Session{ID: "dead", Expire: time.Now().Add(-time.Minute)}))

	done := make(chan struct{})
	go func() {
		session.NewJanitor(store, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), "dead")
		return err == session.ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
