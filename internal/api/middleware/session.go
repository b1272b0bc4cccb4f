package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ideaforge/ideaforge/internal/api/response"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/session"
)

const (
	identityKey contextKey = "identity"
	sessionKey  contextKey = "session"
)

// IdentityResolver loads the identity of a user id.
type IdentityResolver interface {
	Identity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error)
}

// Session is middleware that resolves the session cookie and attaches the
// session and its user's Identity to the request context. Requests without a
// usable session continue anonymously; so do sessions whose user no longer
// exists. Store failures answer 500.
func Session(manager *session.Manager, users IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			sess, err := manager.Resolve(r)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					next.ServeHTTP(w, r)
					return
				}
				slog.Error("failed to resolve session", "error", err, "requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load session", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)

			if sess.Data.UserID != nil {
				identity, err := users.Identity(ctx, *sess.Data.UserID)
				switch {
				case err == nil:
					ctx = context.WithValue(ctx, identityKey, identity)
				case errors.Is(err, auth.ErrUserNotFound):
					slog.Debug("session references missing user", "requestId", requestID)
				default:
					slog.Error("failed to load session user", "error", err, "requestId", requestID)
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load session", requestID)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

// GetSession retrieves the resolved session from the request context.
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return s
	}
	return nil
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
