package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/service"
	"github.com/AnaLR27/cs11-backend/pkg/middleware"
)

// WatchlistHandler handles HTTP requests for employer watchlist endpoints.
// Routes are mounted behind Auth + RequireRole(employer), so the context
// always carries verified employer claims by the time these run.
type WatchlistHandler struct {
	service *service.WatchlistService
	logger  *slog.Logger
}

// NewWatchlistHandler creates a new watchlist HTTP handler.
func NewWatchlistHandler(svc *service.WatchlistService, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{service: svc, logger: logger}
}

// WatchlistListResponse is the paginated response for listing bookmarks.
type WatchlistListResponse struct {
	Items   []domain.WatchlistItem `json:"items"`
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
}

// WatchlistExistsResponse indicates whether a candidate is bookmarked.
type WatchlistExistsResponse struct {
	Exists bool `json:"exists"`
}

// Add handles POST /api/v1/watchlist/{candidateId}
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	employerID := middleware.UserIDFromContext(r.Context())
	candidateID := chi.URLParam(r, "candidateId")

	if err := h.service.Add(r.Context(), employerID, candidateID); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Data: map[string]string{"candidate_id": candidateID, "status": "added"},
	})
}

// Remove handles DELETE /api/v1/watchlist/{candidateId}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	employerID := middleware.UserIDFromContext(r.Context())
	candidateID := chi.URLParam(r, "candidateId")

	if err := h.service.Remove(r.Context(), employerID, candidateID); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"candidate_id": candidateID, "status": "removed"},
	})
}

// Exists handles GET /api/v1/watchlist/{candidateId}
func (h *WatchlistHandler) Exists(w http.ResponseWriter, r *http.Request) {
	employerID := middleware.UserIDFromContext(r.Context())
	candidateID := chi.URLParam(r, "candidateId")

	exists, err := h.service.Exists(r.Context(), employerID, candidateID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: WatchlistExistsResponse{Exists: exists}})
}

// List handles GET /api/v1/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	employerID := middleware.UserIDFromContext(r.Context())

	page := 1
	perPage := 20

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 && pp <= 100 {
			perPage = pp
		}
	}

	items, total, err := h.service.List(r.Context(), employerID, page, perPage)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: WatchlistListResponse{
			Items:   items,
			Total:   total,
			Page:    page,
			PerPage: perPage,
		},
	})
}
