package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/repository"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

// Watchlist pagination bounds.
const (
	defaultWatchlistPageSize = 20
	maxWatchlistPageSize     = 100
)

// WatchlistService implements employer candidate bookmarks.
type WatchlistService struct {
	watchRepo   repository.WatchlistRepository
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// NewWatchlistService creates a new watchlist service.
func NewWatchlistService(
	watchRepo repository.WatchlistRepository,
	profileRepo repository.ProfileRepository,
	logger *slog.Logger,
) *WatchlistService {
	return &WatchlistService{
		watchRepo:   watchRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// Add bookmarks a candidate for the employer. The candidate must exist in
// the directory; re-adding an existing bookmark succeeds quietly.
func (s *WatchlistService) Add(ctx context.Context, employerID, candidateID string) error {
	if candidateID == "" {
		return apperrors.InvalidInput("candidate id is required")
	}

	if _, err := s.profileRepo.GetCandidate(ctx, candidateID); err != nil {
		return apperrors.NotFound("candidate", candidateID)
	}

	if err := s.watchRepo.Add(ctx, employerID, candidateID); err != nil {
		return fmt.Errorf("add watchlist item: %w", err)
	}

	s.logger.InfoContext(ctx, "candidate added to watchlist",
		slog.String("employer_id", employerID),
		slog.String("candidate_id", candidateID),
	)

	return nil
}

// Remove deletes a bookmark.
func (s *WatchlistService) Remove(ctx context.Context, employerID, candidateID string) error {
	if candidateID == "" {
		return apperrors.InvalidInput("candidate id is required")
	}

	if err := s.watchRepo.Remove(ctx, employerID, candidateID); err != nil {
		return fmt.Errorf("remove watchlist item: %w", err)
	}

	return nil
}

// Exists reports whether the employer has bookmarked the candidate.
func (s *WatchlistService) Exists(ctx context.Context, employerID, candidateID string) (bool, error) {
	if candidateID == "" {
		return false, apperrors.InvalidInput("candidate id is required")
	}

	exists, err := s.watchRepo.Exists(ctx, employerID, candidateID)
	if err != nil {
		return false, fmt.Errorf("check watchlist item: %w", err)
	}

	return exists, nil
}

// List returns a page of the employer's bookmarks and the total count.
func (s *WatchlistService) List(ctx context.Context, employerID string, page, perPage int) ([]domain.WatchlistItem, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultWatchlistPageSize
	}
	if perPage > maxWatchlistPageSize {
		perPage = maxWatchlistPageSize
	}

	offset := (page - 1) * perPage
	items, total, err := s.watchRepo.List(ctx, employerID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list watchlist items: %w", err)
	}

	return items, total, nil
}
