package postgres

import (
	"context"
	"fmt"

	"github.com/AnaLR27/cs11-backend/internal/domain"
)

// WatchlistRepository implements repository.WatchlistRepository using PostgreSQL.
type WatchlistRepository struct {
	db DB
}

// NewWatchlistRepository creates a new PostgreSQL-backed watchlist repository.
func NewWatchlistRepository(db DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add bookmarks a candidate for the employer. Re-adding an existing
// bookmark is a no-op.
func (r *WatchlistRepository) Add(ctx context.Context, employerID, candidateID string) error {
	query := `
		INSERT INTO watchlists (employer_id, candidate_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (employer_id, candidate_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, employerID, candidateID)
	if err != nil {
		return fmt.Errorf("insert watchlist item: %w", err)
	}

	return nil
}

// Remove deletes a bookmark. Removing a bookmark that does not exist is a no-op.
func (r *WatchlistRepository) Remove(ctx context.Context, employerID, candidateID string) error {
	query := `DELETE FROM watchlists WHERE employer_id = $1 AND candidate_id = $2`

	_, err := r.db.Exec(ctx, query, employerID, candidateID)
	if err != nil {
		return fmt.Errorf("delete watchlist item: %w", err)
	}

	return nil
}

// List returns a page of the employer's bookmarks, newest first, and the
// total count.
func (r *WatchlistRepository) List(ctx context.Context, employerID string, limit, offset int) ([]domain.WatchlistItem, int, error) {
	countQuery := `SELECT COUNT(*) FROM watchlists WHERE employer_id = $1`

	var total int
	if err := r.db.QueryRow(ctx, countQuery, employerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count watchlist items: %w", err)
	}

	query := `
		SELECT employer_id, candidate_id, created_at
		FROM watchlists
		WHERE employer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, employerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list watchlist items: %w", err)
	}
	defer rows.Close()

	var items []domain.WatchlistItem
	for rows.Next() {
		var item domain.WatchlistItem
		if err := rows.Scan(&item.EmployerID, &item.CandidateID, &item.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan watchlist row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate watchlist rows: %w", err)
	}

	if items == nil {
		items = []domain.WatchlistItem{}
	}

	return items, total, nil
}

// Exists reports whether the employer has bookmarked the candidate.
func (r *WatchlistRepository) Exists(ctx context.Context, employerID, candidateID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM watchlists WHERE employer_id = $1 AND candidate_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, employerID, candidateID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check watchlist item: %w", err)
	}

	return exists, nil
}
