package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateCandidate inserts a candidate directory row.
func (r *ProfileRepository) CreateCandidate(ctx context.Context, p *domain.CandidateProfile) error {
	query := `
		INSERT INTO candidate_profiles (credential_id, user_name, email, headline, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		p.CredentialID,
		p.UserName,
		p.Email,
		p.Headline,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("candidate profile", "credential_id", p.CredentialID)
		}
		return fmt.Errorf("insert candidate profile: %w", err)
	}

	return nil
}

// CreateEmployer inserts an employer directory row.
func (r *ProfileRepository) CreateEmployer(ctx context.Context, p *domain.EmployerProfile) error {
	query := `
		INSERT INTO employer_profiles (credential_id, user_name, email, company_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		p.CredentialID,
		p.UserName,
		p.Email,
		p.CompanyName,
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("employer profile", "credential_id", p.CredentialID)
		}
		return fmt.Errorf("insert employer profile: %w", err)
	}

	return nil
}

// GetCandidate retrieves a candidate profile by credential ID.
func (r *ProfileRepository) GetCandidate(ctx context.Context, credentialID string) (*domain.CandidateProfile, error) {
	query := `
		SELECT credential_id, user_name, email, headline, created_at
		FROM candidate_profiles
		WHERE credential_id = $1`

	var p domain.CandidateProfile
	err := r.db.QueryRow(ctx, query, credentialID).Scan(
		&p.CredentialID,
		&p.UserName,
		&p.Email,
		&p.Headline,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan candidate profile: %w", err)
	}

	return &p, nil
}

// GetEmployer retrieves an employer profile by credential ID.
func (r *ProfileRepository) GetEmployer(ctx context.Context, credentialID string) (*domain.EmployerProfile, error) {
	query := `
		SELECT credential_id, user_name, email, company_name, created_at
		FROM employer_profiles
		WHERE credential_id = $1`

	var p domain.EmployerProfile
	err := r.db.QueryRow(ctx, query, credentialID).Scan(
		&p.CredentialID,
		&p.UserName,
		&p.Email,
		&p.CompanyName,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan employer profile: %w", err)
	}

	return &p, nil
}
