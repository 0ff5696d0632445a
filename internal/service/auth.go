package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AnaLR27/cs11-backend/internal/auth"
	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/event"
	"github.com/AnaLR27/cs11-backend/internal/password"
	"github.com/AnaLR27/cs11-backend/internal/ratelimit"
	"github.com/AnaLR27/cs11-backend/internal/repository"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

// refreshedAccessTTL is the lifetime of access tokens minted by the refresh
// grant. Fixed regardless of environment, unlike login-issued tokens.
const refreshedAccessTTL = 15 * time.Minute

// loginFailedMessage is returned for unknown email, deactivated account, and
// password mismatch alike, so a caller cannot probe which emails exist.
const loginFailedMessage = "Wrong email or password"

// EventPublisher publishes account domain events. Implemented by
// event.Producer; tests substitute a mock.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, cred *domain.Credential) error
	PublishAccountPasswordChanged(ctx context.Context, accountID, email, via string) error
}

// AuthService implements signup, login, token refresh, and password change.
type AuthService struct {
	credRepo    repository.CredentialRepository
	profileRepo repository.ProfileRepository
	tokens      *auth.TokenManager
	limiter     *ratelimit.LoginLimiter
	events      EventPublisher
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	credRepo repository.CredentialRepository,
	profileRepo repository.ProfileRepository,
	tokens *auth.TokenManager,
	limiter *ratelimit.LoginLimiter,
	events EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		credRepo:    credRepo,
		profileRepo: profileRepo,
		tokens:      tokens,
		limiter:     limiter,
		events:      events,
		logger:      logger,
	}
}

// SignupInput holds the parameters for registering a new account.
type SignupInput struct {
	Email    string
	Password string
	Role     string
	UserName string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// Signup creates a credential and its role-specific profile row, then
// returns the identity summary with a fresh token pair.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.Identity, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}
	if input.UserName == "" {
		return nil, nil, apperrors.InvalidInput("user name is required")
	}
	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, nil, apperrors.InvalidInput("role must be candidate or employer")
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	cred := &domain.Credential{
		ID:           uuid.New().String(),
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hash,
		UserName:     input.UserName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		LastLoginAt:  &now,
	}

	if err := s.credRepo.Create(ctx, cred); err != nil {
		return nil, nil, fmt.Errorf("create credential: %w", err)
	}

	// A failed profile insert leaves an orphaned credential. Logged rather
	// than rolled back: the signup already succeeded from the caller's view
	// and the row can be backfilled.
	if err := s.createProfile(ctx, cred); err != nil {
		s.logger.ErrorContext(ctx, "failed to create profile for new account",
			slog.String("account_id", cred.ID),
			slog.String("role", cred.Role.String()),
			slog.String("error", err.Error()),
		)
	}

	tokens, err := s.generateTokenPair(cred)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	if err := s.events.PublishAccountRegistered(ctx, cred); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.String("account_id", cred.ID),
			slog.String("error", err.Error()),
		)
	}

	signupsTotal.WithLabelValues(cred.Role.String()).Inc()
	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", cred.ID),
		slog.String("email", cred.Email),
		slog.String("role", cred.Role.String()),
	)

	identity := cred.Identity()
	return &identity, tokens, nil
}

// Login authenticates by email and password. limiterKey identifies the
// caller for rate limiting; the limit is checked before any credential
// lookup and cleared on success.
func (s *AuthService) Login(ctx context.Context, limiterKey string, input LoginInput) (*domain.Identity, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	if !s.limiter.Allow(limiterKey) {
		loginsTotal.WithLabelValues(outcomeRateLimited).Inc()
		s.logger.WarnContext(ctx, "login rate limit exceeded",
			slog.String("limiter_key", limiterKey),
		)
		return nil, nil, apperrors.RateLimited("too many login attempts, try again later")
	}

	cred, err := s.credRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		loginsTotal.WithLabelValues(outcomeRejected).Inc()
		return nil, nil, apperrors.Unauthorized(loginFailedMessage)
	}

	if !cred.IsActive {
		loginsTotal.WithLabelValues(outcomeRejected).Inc()
		return nil, nil, apperrors.Unauthorized(loginFailedMessage)
	}

	ok, err := password.Verify(input.Password, cred.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		loginsTotal.WithLabelValues(outcomeRejected).Inc()
		return nil, nil, apperrors.Unauthorized(loginFailedMessage)
	}

	s.limiter.Reset(limiterKey)

	now := time.Now().UTC()
	if err := s.credRepo.UpdateLastLogin(ctx, cred.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to update last login",
			slog.String("account_id", cred.ID),
			slog.String("error", err.Error()),
		)
	}

	tokens, err := s.generateTokenPair(cred)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	loginsTotal.WithLabelValues(outcomeSuccess).Inc()
	s.logger.InfoContext(ctx, "account logged in",
		slog.String("account_id", cred.ID),
		slog.String("email", cred.Email),
	)

	identity := cred.Identity()
	return &identity, tokens, nil
}

// Refresh verifies a refresh token and mints a new access token. The
// refresh token itself is not rotated, and the new access token has a
// fixed 15 minute lifetime.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.Unauthorized("refresh token is required")
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.Forbidden("invalid or expired refresh token")
	}

	// The account must still exist and be active at refresh time.
	cred, err := s.credRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return "", apperrors.Unauthorized("account no longer exists")
	}
	if !cred.IsActive {
		return "", apperrors.Unauthorized("account is deactivated")
	}

	accessToken, err := s.tokens.GenerateAccessTokenWithTTL(cred.ID, cred.Email, cred.Role.String(), refreshedAccessTTL)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed",
		slog.String("account_id", cred.ID),
	)

	return accessToken, nil
}

// ChangePassword verifies the old password and stores a new digest for the
// account. Unlike login, a mismatch here names the old password as wrong:
// the caller is already authenticated, so there is nothing to enumerate.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) (*domain.Identity, error) {
	if oldPassword == "" {
		return nil, apperrors.InvalidInput("old password is required")
	}
	if newPassword == "" {
		return nil, apperrors.InvalidInput("new password is required")
	}

	cred, err := s.credRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Unauthorized("account not found")
	}

	ok, err := password.Verify(oldPassword, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify old password: %w", err)
	}
	if !ok {
		return nil, apperrors.Unauthorized("Old password is incorrect")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash new password: %w", err)
	}

	if err := s.credRepo.UpdatePassword(ctx, cred.ID, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	if err := s.events.PublishAccountPasswordChanged(ctx, cred.ID, cred.Email, event.ViaChange); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.password_changed event",
			slog.String("account_id", cred.ID),
			slog.String("error", err.Error()),
		)
	}

	passwordChangesTotal.WithLabelValues(event.ViaChange).Inc()
	s.logger.InfoContext(ctx, "password changed",
		slog.String("account_id", cred.ID),
	)

	identity := cred.Identity()
	return &identity, nil
}

func (s *AuthService) createProfile(ctx context.Context, cred *domain.Credential) error {
	switch cred.Role {
	case domain.RoleCandidate:
		return s.profileRepo.CreateCandidate(ctx, &domain.CandidateProfile{
			CredentialID: cred.ID,
			UserName:     cred.UserName,
			Email:        cred.Email,
			CreatedAt:    cred.CreatedAt,
		})
	case domain.RoleEmployer:
		return s.profileRepo.CreateEmployer(ctx, &domain.EmployerProfile{
			CredentialID: cred.ID,
			UserName:     cred.UserName,
			Email:        cred.Email,
			CreatedAt:    cred.CreatedAt,
		})
	default:
		return fmt.Errorf("unknown role %q", cred.Role)
	}
}

func (s *AuthService) generateTokenPair(cred *domain.Credential) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(cred.ID, cred.Email, cred.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(cred.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
