package middleware

import (
	"net/http"

	"github.com/ideaforge/ideaforge/internal/api/response"
)

// RequireAuthenticated rejects requests without an identity with 401.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetIdentity(r.Context()) == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admin identities with 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", requestID)
				return
			}

			if !identity.IsAdmin {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Forbidden: Admin access required", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
