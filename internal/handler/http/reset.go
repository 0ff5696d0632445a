package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnaLR27/cs11-backend/internal/service"
	"github.com/AnaLR27/cs11-backend/pkg/validator"
)

// ResetHandler handles HTTP requests for the password-reset flow.
type ResetHandler struct {
	service *service.ResetService
	logger  *slog.Logger
}

// NewResetHandler creates a new password-reset HTTP handler.
func NewResetHandler(svc *service.ResetService, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{service: svc, logger: logger}
}

// SendMailRequest is the JSON request body for requesting a reset link.
type SendMailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the JSON request body for consuming a reset token.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// SendMail handles POST /api/v1/forgotten-password/send-mail
func (h *ResetHandler) SendMail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req SendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.RequestReset(r.Context(), req.Email); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"status": "reset link sent"},
	})
}

// ResetPassword handles PATCH /api/v1/forgotten-password/reset-password/{token}
func (h *ResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.ConsumeReset(r.Context(), token, req.NewPassword); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	// No tokens in the response: the caller logs in again.
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"status": "password updated"},
	})
}
