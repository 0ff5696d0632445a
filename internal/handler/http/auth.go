package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnaLR27/cs11-backend/internal/service"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
	"github.com/AnaLR27/cs11-backend/pkg/middleware"
	"github.com/AnaLR27/cs11-backend/pkg/validator"
)

// maxBodySize bounds auth request bodies.
const maxBodySize = 1 << 20

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service       *service.AuthService
	refreshHeader string
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler. refreshHeader names the
// request header carrying the refresh token on GET /auth/refresh.
func NewAuthHandler(svc *service.AuthService, refreshHeader string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, refreshHeader: refreshHeader, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for account signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=candidate employer"`
	UserName string `json:"userName" validate:"required,min=1,max=100"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the JSON request body for password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// --- Response types ---

// AuthResponse wraps an identity with its tokens.
type AuthResponse struct {
	Identity any `json:"identity"`
	Tokens   any `json:"tokens"`
}

// --- Handlers ---

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, tokens, err := h.service.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		UserName: req.UserName,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Data: AuthResponse{Identity: identity, Tokens: tokens},
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	// Failed attempts are counted per client address.
	limiterKey := middleware.ClientIP(r)

	identity, tokens, err := h.service.Login(r.Context(), limiterKey, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: AuthResponse{Identity: identity, Tokens: tokens},
	})
}

// Refresh handles GET /api/v1/auth/refresh. The refresh token travels in a
// configured header, not the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.Header.Get(h.refreshHeader)

	accessToken, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"access_token": accessToken},
	})
}

// ChangePassword handles PATCH /api/v1/auth/change-password/{id}
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	accountID := chi.URLParam(r, "id")
	if accountID != middleware.UserIDFromContext(r.Context()) {
		writeAppError(w, r, apperrors.Forbidden("cannot change another account's password"), h.logger)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, err := h.service.ChangePassword(r.Context(), accountID, req.OldPassword, req.NewPassword)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity})
}
