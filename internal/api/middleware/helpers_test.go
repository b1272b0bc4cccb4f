package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/session"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newManager(t *testing.T, store session.Store) *session.Manager {
	t.Helper()
	m, err := session.NewManager(store, session.Options{
		CookieName: "sid",
		TTL:        time.Hour,
		Secret:     testSecret,
	})
	require.NoError(t, err)
	return m
}

// loginCookie establishes a session for userID and returns its cookie.
func loginCookie(t *testing.T, m *session.Manager, userID uuid.UUID) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	_, err := m.Establish(w, httptest.NewRequest(http.MethodPost, "/api/login", nil), userID)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

type mockIdentities struct {
	identityFn func(ctx context.Context, userID uuid.UUID) (*auth.Identity, error)
}

func (m *mockIdentities) Identity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	if m.identityFn != nil {
		return m.identityFn(ctx, userID)
	}
	return nil, auth.ErrUserNotFound
}

// failingStore is a session store whose reads fail.
type failingStore struct {
	session.Store
}

func (failingStore) Get(context.Context, string) (*session.Session, error) {
	return nil, errors.New("connection refused")
}

func withIdentity(r *http.Request, identity *auth.Identity) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), identity))
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
