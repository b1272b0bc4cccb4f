package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/api/response"
	"github.com/ideaforge/ideaforge/internal/api/validation"
	"github.com/ideaforge/ideaforge/internal/auth"
	"github.com/ideaforge/ideaforge/internal/session"
)

// Accounts is the subset of auth.Service used by the account handlers.
type Accounts interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.User, error)
	Login(ctx context.Context, creds auth.Credentials) (*auth.User, error)
	CreateUser(ctx context.Context, in auth.CreateUserInput) (*auth.User, error)
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	IsAdmin   bool    `json:"isAdmin"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toUserResponse(id *auth.Identity) userResponse {
	return userResponse{
		ID:        id.UserID.String(),
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		IsAdmin:   id.IsAdmin,
		CreatedAt: formatTime(id.CreatedAt),
		UpdatedAt: formatTime(id.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// AuthHandler handles registration, login, logout and the current identity.
type AuthHandler struct {
	accounts Accounts
	sessions *session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts Accounts, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
	}
}

// Register handles POST /register. The new user is logged in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.accounts.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "CONFLICT", "User already exists.", requestID)
			return
		}
		slog.Error("failed to register user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error registering user", requestID)
		return
	}

	if _, err := h.sessions.Establish(w, r, u.ID); err != nil {
		slog.Error("failed to establish session after registration", "error", err, "user_id", u.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Error registering user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(auth.IdentityFor(u)), requestID)
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.accounts.Login(r.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password.", requestID)
			return
		}
		slog.Error("failed to verify credentials", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		return
	}

	if _, err := h.sessions.Establish(w, r, u.ID); err != nil {
		slog.Error("failed to establish session", "error", err, "user_id", u.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(auth.IdentityFor(u)), requestID)
}

// Logout handles POST /logout. Any failure while destroying the session is a 500.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	sess := middleware.GetSession(r.Context())
	if sess == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", requestID)
		return
	}

	if err := h.sessions.Logout(w, r, sess); err != nil {
		slog.Error("failed to destroy session", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log out", requestID)
		return
	}

	response.Message(w, http.StatusOK, "Logged out successfully", requestID)
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(identity), requestID)
}
