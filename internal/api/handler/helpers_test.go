package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/idea"
	"github.com/ideaforge/ideaforge/internal/session"
)

// --- Mock Accounts ---

type mockAccounts struct {
	registerFn   func(ctx context.Context, in auth.RegisterInput) (*auth.User, error)
	loginFn      func(ctx context.Context, creds auth.Credentials) (*auth.User, error)
	createUserFn func(ctx context.Context, in auth.CreateUserInput) (*auth.User, error)
}

func (m *mockAccounts) Register(ctx context.Context, in auth.RegisterInput) (*auth.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return sampleUser(in.Email, false), nil
}

func (m *mockAccounts) Login(ctx context.Context, creds auth.Credentials) (*auth.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, creds)
	}
	return sampleUser(creds.Email, false), nil
}

func (m *mockAccounts) CreateUser(ctx context.Context, in auth.CreateUserInput) (*auth.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, in)
	}
	u := sampleUser(in.Email, in.IsAdmin)
	if in.ID != nil {
		u.ID = *in.ID
	}
	return u, nil
}

// --- Mock idea repository ---

type mockIdeaRepo struct {
	createFn         func(ctx context.Context, i *idea.Idea) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*idea.Idea, error)
	listApprovedFn   func(ctx context.Context) ([]idea.Idea, error)
	listFn           func(ctx context.Context, filter idea.ListFilter) ([]idea.Idea, error)
	updateFn         func(ctx context.Context, id uuid.UUID, fields idea.UpdateFields) (*idea.Idea, error)
	setStatusFn      func(ctx context.Context, id uuid.UUID, status idea.Status) (*idea.Idea, error)
	incrementVotesFn func(ctx context.Context, id uuid.UUID, vote idea.Vote) (*idea.Idea, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockIdeaRepo) Create(ctx context.Context, i *idea.Idea) error {
	if m.createFn != nil {
		return m.createFn(ctx, i)
	}
	now := time.Now().UTC()
	i.ID = uuid.New()
	i.CreatedAt = now
	i.UpdatedAt = now
	return nil
}

func (m *mockIdeaRepo) GetByID(ctx context.Context, id uuid.UUID) (*idea.Idea, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, idea.ErrIdeaNotFound
}

func (m *mockIdeaRepo) ListApproved(ctx context.Context) ([]idea.Idea, error) {
	if m.listApprovedFn != nil {
		return m.listApprovedFn(ctx)
	}
	return []idea.Idea{}, nil
}

func (m *mockIdeaRepo) List(ctx context.Context, filter idea.ListFilter) ([]idea.Idea, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []idea.Idea{}, nil
}

func (m *mockIdeaRepo) Update(ctx context.Context, id uuid.UUID, fields idea.UpdateFields) (*idea.Idea, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, idea.ErrIdeaNotFound
}

func (m *mockIdeaRepo) SetStatus(ctx context.Context, id uuid.UUID, status idea.Status) (*idea.Idea, error) {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil, idea.ErrIdeaNotFound
}

func (m *mockIdeaRepo) IncrementVotes(ctx context.Context, id uuid.UUID, vote idea.Vote) (*idea.Idea, error) {
	if m.incrementVotesFn != nil {
		return m.incrementVotesFn(ctx, id, vote)
	}
	return nil, idea.ErrIdeaNotFound
}

func (m *mockIdeaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return idea.ErrIdeaNotFound
}

// --- Helpers ---

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.NewMemoryStore(), session.Options{
		CookieName: "sid",
		TTL:        time.Hour,
		Secret:     testSecret,
	})
	require.NoError(t, err)
	return m
}

func sampleUser(email string, isAdmin bool) *auth.User {
	now := time.Now().UTC()
	return &auth.User{
		ID:        uuid.New(),
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleIdea(id uuid.UUID, status idea.Status) *idea.Idea {
	now := time.Now().UTC()
	return &idea.Idea{
		ID:          id,
		UserID:      uuid.New(),
		Title:       "Solar kiosks",
		Description: "Pay-per-charge phone kiosks for markets",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

var (
	adminIdentity = &auth.Identity{UserID: uuid.New(), Email: "alice@example.com", IsAdmin: true}
	userIdentity  = &auth.Identity{UserID: uuid.New(), Email: "bob@example.com"}
)

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, httptest.NewRecorder()
}

func asIdentity(req *http.Request, identity *auth.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "failed to parse response body")
	return env
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

type noIdentities struct{}

func (noIdentities) Identity(context.Context, uuid.UUID) (*auth.Identity, error) {
	return nil, auth.ErrUserNotFound
}

// withSession runs req through the Session middleware so the session named by
// cookie is attached to its context.
func withSession(t *testing.T, m *session.Manager, req *http.Request, cookie *http.Cookie) *http.Request {
	t.Helper()
	req.AddCookie(cookie)

	var out *http.Request
	middleware.Session(m, noIdentities{})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		out = r
	})).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, out)
	require.NotNil(t, middleware.GetSession(out.Context()))
	return out
}

func withCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	r.AddCookie(c)
	return r
}
