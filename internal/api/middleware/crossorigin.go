package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ideaforge/ideaforge/internal/api/response"
)

// OriginChecker decides whether a request is an allowed cross-origin request.
type OriginChecker interface {
	Check(r *http.Request) error
}

// CrossOrigin rejects unsafe cross-origin browser requests with 403. Safe
// methods and requests without browser fetch metadata pass through.
func CrossOrigin(checker OriginChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := checker.Check(r); err != nil {
				requestID := GetRequestID(r.Context())
				slog.Warn("cross-origin request rejected", "error", err, "origin", r.Header.Get("Origin"), "requestId", requestID)
				response.Err(w, http.StatusForbidden, "CROSS_ORIGIN_REQUEST", "Cross-origin request rejected", requestID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
