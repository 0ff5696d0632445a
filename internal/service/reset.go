package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnaLR27/cs11-backend/internal/auth"
	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/event"
	"github.com/AnaLR27/cs11-backend/internal/mailer"
	"github.com/AnaLR27/cs11-backend/internal/password"
	"github.com/AnaLR27/cs11-backend/internal/repository"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
)

// ResetService implements the email-based password reset flow.
type ResetService struct {
	credRepo repository.CredentialRepository
	tokens   *auth.TokenManager
	mail     mailer.Sender
	events   EventPublisher
	baseURL  string
	logger   *slog.Logger
}

// NewResetService creates a new password-reset service. baseURL is the
// public origin used to build reset links.
func NewResetService(
	credRepo repository.CredentialRepository,
	tokens *auth.TokenManager,
	mail mailer.Sender,
	events EventPublisher,
	baseURL string,
	logger *slog.Logger,
) *ResetService {
	return &ResetService{
		credRepo: credRepo,
		tokens:   tokens,
		mail:     mail,
		events:   events,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// RequestReset signs a reset token for the email and mails a reset link.
// It never checks whether an account exists: the response is identical for
// known and unknown addresses, so it cannot be used to enumerate accounts.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	normalized := domain.NormalizeEmail(email)

	token, err := s.tokens.GenerateResetToken(normalized)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	subject, body := mailer.ResetEmail(s.baseURL, token)
	if err := s.mail.Send(ctx, normalized, subject, body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset link sent",
		slog.String("email", normalized),
	)

	return nil
}

// ConsumeReset verifies a reset token and overwrites the account's password
// digest. The token's signature and expiry are checked before anything else
// is trusted. Returns only an acknowledgment: the caller logs in again.
func (s *ResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return apperrors.InvalidInput("new password is required")
	}
	if token == "" {
		return apperrors.Unauthorized("reset token is required")
	}

	claims, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return apperrors.Forbidden("invalid or expired reset token")
	}

	cred, err := s.credRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return apperrors.NotFound("account", claims.Email)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.credRepo.UpdatePassword(ctx, cred.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.events.PublishAccountPasswordChanged(ctx, cred.ID, cred.Email, event.ViaReset); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.password_changed event",
			slog.String("account_id", cred.ID),
			slog.String("error", err.Error()),
		)
	}

	passwordChangesTotal.WithLabelValues(event.ViaReset).Inc()
	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("account_id", cred.ID),
	)

	return nil
}
