package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

// CredentialRepository implements repository.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	db DB
}

// NewCredentialRepository creates a new PostgreSQL-backed credential repository.
func NewCredentialRepository(db DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create inserts a new credential into the database.
func (r *CredentialRepository) Create(ctx context.Context, c *domain.Credential) error {
	query := `
		INSERT INTO credentials (id, email, password_hash, user_name, role, is_active, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Email,
		c.PasswordHash,
		c.UserName,
		c.Role,
		c.IsActive,
		c.CreatedAt,
		c.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("account", "email", c.Email)
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	return nil
}

// GetByID retrieves a credential by its ID.
func (r *CredentialRepository) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	query := `
		SELECT id, email, password_hash, user_name, role, is_active, created_at, last_login_at
		FROM credentials
		WHERE id = $1`

	return r.scanCredential(ctx, query, id)
}

// GetByEmail retrieves a credential by its email address. Callers pass the
// normalized form; the lookup itself is case insensitive.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	query := `
		SELECT id, email, password_hash, user_name, role, is_active, created_at, last_login_at
		FROM credentials
		WHERE lower(email) = lower($1)`

	return r.scanCredential(ctx, query, email)
}

// UpdatePassword replaces the stored password digest.
func (r *CredentialRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE credentials SET password_hash = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// UpdateLastLogin records the time of a successful login.
func (r *CredentialRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE credentials SET last_login_at = $1 WHERE id = $2`

	ct, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// scanCredential is a helper that executes a query expected to return a single credential row.
func (r *CredentialRepository) scanCredential(ctx context.Context, query string, args ...any) (*domain.Credential, error) {
	var c domain.Credential

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.UserName,
		&c.Role,
		&c.IsActive,
		&c.CreatedAt,
		&c.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &c, nil
}
