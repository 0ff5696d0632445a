package repository

import (
	"context"
	"time"

	"github.com/AnaLR27/cs11-backend/internal/domain"
)

// CredentialRepository defines the interface for account credential persistence.
type CredentialRepository interface {
	// Create inserts a new credential into the store.
	Create(ctx context.Context, cred *domain.Credential) error

	// GetByID retrieves a credential by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Credential, error)

	// GetByEmail retrieves a credential by its normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)

	// UpdatePassword replaces the stored password digest.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateLastLogin records the time of a successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// ProfileRepository defines the interface for directory profile persistence.
// A profile row is created alongside each credential so the rest of the
// system can list candidates and employers without touching credentials.
type ProfileRepository interface {
	// CreateCandidate inserts a candidate directory row.
	CreateCandidate(ctx context.Context, profile *domain.CandidateProfile) error

	// CreateEmployer inserts an employer directory row.
	CreateEmployer(ctx context.Context, profile *domain.EmployerProfile) error

	// GetCandidate retrieves a candidate profile by credential ID.
	GetCandidate(ctx context.Context, credentialID string) (*domain.CandidateProfile, error)

	// GetEmployer retrieves an employer profile by credential ID.
	GetEmployer(ctx context.Context, credentialID string) (*domain.EmployerProfile, error)
}

// WatchlistRepository defines the interface for employer watchlist persistence.
type WatchlistRepository interface {
	// Add bookmarks a candidate for the employer. Adding the same
	// candidate twice is not an error.
	Add(ctx context.Context, employerID, candidateID string) error

	// Remove deletes a bookmark.
	Remove(ctx context.Context, employerID, candidateID string) error

	// List returns a page of the employer's bookmarks and the total count.
	List(ctx context.Context, employerID string, limit, offset int) ([]domain.WatchlistItem, int, error)

	// Exists reports whether the employer has bookmarked the candidate.
	Exists(ctx context.Context, employerID, candidateID string) (bool, error)
}
