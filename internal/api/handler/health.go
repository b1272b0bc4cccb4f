package handler

import (
	"context"
	"net/http"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/api/response"
)

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	pinger  DBPinger
	store   string
	version string
}

// NewHealthHandler creates a new HealthHandler. pinger may be nil for the
// in-memory store.
func NewHealthHandler(pinger DBPinger, store, version string) *HealthHandler {
	return &HealthHandler{
		pinger:  pinger,
		store:   store,
		version: version,
	}
}

type storeStatus struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
}

type healthData struct {
	Status  string      `json:"status"`
	Version string      `json:"version"`
	Store   storeStatus `json:"store"`
}

// ServeHTTP handles the health check request. An unreachable database answers
// 503 with status "degraded".
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"
	code := http.StatusOK
	connected := true

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			connected = false
		}
	}

	response.Success(w, code, healthData{
		Status:  status,
		Version: h.version,
		Store: storeStatus{
			Type:      h.store,
			Connected: connected,
		},
	}, requestID)
}
