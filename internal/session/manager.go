package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned by Resolve when the request carries no usable
// session: no cookie, a bad signature, an unknown id or an expired row.
var ErrNoSession = errors.New("no session")

// MinSecretLength is the minimum accepted length of the cookie signing secret.
const MinSecretLength = 32

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secret     []byte
	// Secure forces the Secure cookie attribute. Requests served over TLS get
	// it regardless.
	Secure bool
}

// Manager bridges HTTP cookies and persisted sessions.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts Options) (*Manager, error) {
	if len(opts.Secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if opts.CookieName == "" {
		return nil, errors.New("session cookie name is required")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{store: store, opts: opts, now: time.Now}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// Establish starts a new session bound to userID and sets the session cookie.
// A session already attached to the request is destroyed first.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	ctx := r.Context()

	prev, err := m.Resolve(r)
	switch {
	case err == nil:
		if err := m.store.Delete(ctx, prev.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("destroying previous session: %w", err)
		}
	case !errors.Is(err, ErrNoSession):
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:     id,
		Data:   Data{UserID: &userID},
		Expire: m.now().Add(m.opts.TTL).UTC(),
	}

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    m.sign(id),
		Path:     "/",
		Expires:  sess.Expire,
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Resolve returns the live session referenced by the request cookie.
func (m *Manager) Resolve(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	id, ok := m.verify(c.Value)
	if !ok {
		return nil, ErrNoSession
	}

	sess, err := m.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return sess, nil
}

// Logout clears the identity from the session, deletes the session row and
// expires the cookie, in that order. The first failing step is returned and the
// remaining steps are skipped.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request, sess *Session) error {
	ctx := r.Context()

	sess.Data.UserID = nil
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("clearing session identity: %w", err)
	}

	if err := m.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure(r),
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (m *Manager) secure(r *http.Request) bool {
	return m.opts.Secure || r.TLS != nil
}

// sign returns "id.signature" with an HMAC-SHA256 signature over id.
func (m *Manager) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(m.mac(id))
}

func (m *Manager) verify(value string) (string, bool) {
	id, encodedSig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}

	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", false
	}

	if !hmac.Equal(sig, m.mac(id)) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) []byte {
	h := hmac.New(sha256.New, m.opts.Secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}

// newID returns 256 random bits, base64url encoded.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
