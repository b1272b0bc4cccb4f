package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/api/response"
	"github.com/ideaforge/ideaforge/internal/api/validation"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/idea"
)

type createIdeaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ideaResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Upvotes     int    `json:"upvotes"`
	Downvotes   int    `json:"downvotes"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toIdeaResponse(i *idea.Idea) ideaResponse {
	return ideaResponse{
		ID:          i.ID.String(),
		UserID:      i.UserID.String(),
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Upvotes:     i.Upvotes,
		Downvotes:   i.Downvotes,
		CreatedAt:   formatTime(i.CreatedAt),
		UpdatedAt:   formatTime(i.UpdatedAt),
	}
}

func toIdeaResponses(ideas []idea.Idea) []ideaResponse {
	items := make([]ideaResponse, 0, len(ideas))
	for i := range ideas {
		items = append(items, toIdeaResponse(&ideas[i]))
	}
	return items
}

func actorFor(identity *auth.Identity) idea.Actor {
	if identity == nil {
		return idea.Actor{}
	}
	return idea.Actor{UserID: identity.UserID, IsAdmin: identity.IsAdmin}
}

// parseIdeaID reads the {id} URL parameter, writing a 400 when it is malformed.
func parseIdeaID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}

// writeIdeaError maps lifecycle errors to responses. failMsg is used for
// unexpected failures.
func writeIdeaError(w http.ResponseWriter, err error, failMsg, requestID string) {
	switch {
	case errors.Is(err, idea.ErrIdeaNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Idea not found", requestID)
	case errors.Is(err, idea.ErrForbiddenTransition):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Forbidden: Admin access required", requestID)
	case errors.Is(err, idea.ErrInvalidIdea), errors.Is(err, idea.ErrInvalidStatus):
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), requestID)
	default:
		slog.Error(failMsg, "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", failMsg, requestID)
	}
}

// IdeaHandler handles submission, the public ranking and voting.
type IdeaHandler struct {
	lifecycle *idea.Lifecycle
}

// NewIdeaHandler creates a new IdeaHandler.
func NewIdeaHandler(lifecycle *idea.Lifecycle) *IdeaHandler {
	return &IdeaHandler{lifecycle: lifecycle}
}

// Create handles POST /ideas. Any client-supplied owner or status is ignored.
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateIdeaRequest(validation.CreateIdeaRequest{
		Title:       req.Title,
		Description: req.Description,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	actor := actorFor(middleware.GetIdentity(r.Context()))
	created, err := h.lifecycle.Submit(r.Context(), actor, idea.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeIdeaError(w, err, "Failed to submit idea", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toIdeaResponse(created), requestID)
}

// ListApproved handles GET /ideas/approved.
func (h *IdeaHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ideas, err := h.lifecycle.Approved(r.Context())
	if err != nil {
		writeIdeaError(w, err, "Failed to list ideas", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, toIdeaResponses(ideas), len(ideas), requestID)
}

// Upvote handles POST /ideas/{id}/upvote.
func (h *IdeaHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, idea.Upvote)
}

// Downvote handles POST /ideas/{id}/downvote.
func (h *IdeaHandler) Downvote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, idea.Downvote)
}

func (h *IdeaHandler) vote(w http.ResponseWriter, r *http.Request, vote idea.Vote) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIdeaID(w, r, requestID)
	if !ok {
		return
	}

	updated, err := h.lifecycle.Vote(r.Context(), id, vote)
	if err != nil {
		writeIdeaError(w, err, "Failed to record vote", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIdeaResponse(updated), requestID)
}
