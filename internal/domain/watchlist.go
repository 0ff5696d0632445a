package domain

import "time"

// WatchlistItem represents a candidate bookmarked by an employer.
type WatchlistItem struct {
	EmployerID  string    `json:"employer_id"`
	CandidateID string    `json:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"`
}
