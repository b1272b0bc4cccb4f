package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/api/response"
	"github.com/ideaforge/ideaforge/internal/api/validation"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/idea"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateIdeaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type adminCreateUserRequest struct {
	ID        *string `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	IsAdmin   bool    `json:"isAdmin"`
}

// AdminHandler handles the review surface under /admin.
type AdminHandler struct {
	lifecycle *idea.Lifecycle
	accounts  Accounts
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(lifecycle *idea.Lifecycle, accounts Accounts) *AdminHandler {
	return &AdminHandler{
		lifecycle: lifecycle,
		accounts:  accounts,
	}
}

// List handles GET /admin/ideas with an optional ?status= filter.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var filter idea.ListFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := idea.ParseStatus(s)
		if err != nil {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				validation.ValidateUpdateStatusRequest(validation.UpdateStatusRequest{Status: s}), requestID)
			return
		}
		filter.Status = &status
	}

	ideas, err := h.lifecycle.All(r.Context(), actorFor(middleware.GetIdentity(r.Context())), filter)
	if err != nil {
		writeIdeaError(w, err, "Failed to list ideas", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, toIdeaResponses(ideas), len(ideas), requestID)
}

// GetByID handles GET /admin/ideas/{id}.
func (h *AdminHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIdeaID(w, r, requestID)
	if !ok {
		return
	}

	found, err := h.lifecycle.Get(r.Context(), actorFor(middleware.GetIdentity(r.Context())), id)
	if err != nil {
		writeIdeaError(w, err, "Failed to get idea", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIdeaResponse(found), requestID)
}

// UpdateStatus handles PUT /admin/ideas/{id}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIdeaID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateStatusRequest(validation.UpdateStatusRequest{Status: req.Status})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.lifecycle.ChangeStatus(r.Context(), actorFor(middleware.GetIdentity(r.Context())), id, idea.Status(req.Status))
	if err != nil {
		writeIdeaError(w, err, "Failed to update idea status", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIdeaResponse(updated), requestID)
}

// Update handles PUT /admin/ideas/{id}. Omitted fields are left unchanged.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIdeaID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateIdeaRequest(validation.UpdateIdeaRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	fields := idea.UpdateFields{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		s := idea.Status(*req.Status)
		fields.Status = &s
	}

	updated, err := h.lifecycle.Edit(r.Context(), actorFor(middleware.GetIdentity(r.Context())), id, fields)
	if err != nil {
		writeIdeaError(w, err, "Failed to update idea", requestID)
		return
	}

	response.Success(w, http.StatusOK, toIdeaResponse(updated), requestID)
}

// Delete handles DELETE /admin/ideas/{id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIdeaID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.lifecycle.Remove(r.Context(), actorFor(middleware.GetIdentity(r.Context())), id); err != nil {
		writeIdeaError(w, err, "Failed to delete idea", requestID)
		return
	}

	response.NoContent(w)
}

// CreateUser handles POST /admin/users. The account is created without a
// password, or updated when id names an existing user.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req adminCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		ID:    req.ID,
		Email: req.Email,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	in := auth.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsAdmin:   req.IsAdmin,
	}
	if req.ID != nil {
		id, _ := uuid.Parse(*req.ID) // already validated
		in.ID = &id
	}

	u, err := h.accounts.CreateUser(r.Context(), in)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "CONFLICT", "User already exists.", requestID)
			return
		}
		slog.Error("failed to create user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(auth.IdentityFor(u)), requestID)
}
