package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

func newCredentialTestFixture(t *testing.T) (*CredentialRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewCredentialRepository(mock)
	return repo, mock
}

func sampleCredential() *domain.Credential {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Credential{
		ID:           "c-1234",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		UserName:     "alice",
		Role:         domain.RoleCandidate,
		IsActive:     true,
		CreatedAt:    now,
		LastLoginAt:  &now,
	}
}

func credentialRow(c *domain.Credential) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "user_name", "role", "is_active", "created_at", "last_login_at",
	}).AddRow(
		c.ID, c.Email, c.PasswordHash, c.UserName, c.Role, c.IsActive, c.CreatedAt, c.LastLoginAt,
	)
}

func TestCredentialRepository_Create_Success(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	c := sampleCredential()

	// The signup timestamp counts as the first login, so last_login_at is
	// written at insert time rather than left NULL.
	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(c.ID, c.Email, c.PasswordHash, c.UserName, c.Role, c.IsActive, c.CreatedAt, c.LastLoginAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), c)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	c := sampleCredential()

	mock.ExpectExec("INSERT INTO credentials").
		WithArgs(c.ID, c.Email, c.PasswordHash, c.UserName, c.Role, c.IsActive, c.CreatedAt, c.LastLoginAt).
		WillReturnError(fmt.Errorf("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists), "expected ErrAlreadyExists, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByEmail_Success(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	c := sampleCredential()

	mock.ExpectQuery("SELECT .+ FROM credentials WHERE lower\\(email\\)").
		WithArgs(c.Email).
		WillReturnRows(credentialRow(c))

	got, err := repo.GetByEmail(context.Background(), c.Email)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.Email, got.Email)
	assert.Equal(t, domain.RoleCandidate, got.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM credentials WHERE lower\\(email\\)").
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM credentials WHERE id =").
		WithArgs("c-missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "c-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_UpdatePassword_Success(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE credentials SET password_hash").
		WithArgs("$2a$10$newhash", "c-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdatePassword(context.Background(), "c-1234", "$2a$10$newhash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_UpdatePassword_NotFound(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE credentials SET password_hash").
		WithArgs("$2a$10$newhash", "c-missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "c-missing", "$2a$10$newhash")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_UpdateLastLogin_Success(t *testing.T) {
	repo, mock := newCredentialTestFixture(t)
	defer mock.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE credentials SET last_login_at").
		WithArgs(at, "c-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateLastLogin(context.Background(), "c-1234", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
