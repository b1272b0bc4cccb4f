package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ideaforge/ideaforge/internal/api/response"
)

type panicDetails struct {
	Panic string `json:"panic"`
	Stack string `json:"stack"`
}

// Recovery returns middleware that recovers from panics and answers 500. When
// development is true the panic value and stack are included in the details.
func Recovery(development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					requestID := GetRequestID(r.Context())
					stack := debug.Stack()
					slog.Error("panic recovered", "error", err, "requestId", requestID, "stack", string(stack))

					if development {
						response.ErrWithDetails(w, http.StatusInternalServerError, "INTERNAL_ERROR",
							"An unexpected error occurred",
							panicDetails{Panic: fmt.Sprint(err), Stack: string(stack)},
							requestID)
						return
					}
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
