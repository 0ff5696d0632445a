package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnaLR27/cs11-backend/internal/domain"
	pkgkafka "github.com/AnaLR27/cs11-backend/pkg/kafka"
	"github.com/AnaLR27/cs11-backend/pkg/logger"
)

// Kafka topic constants for account domain events.
const (
	TopicAccountRegistered      = "jobboard.account.registered"
	TopicAccountPasswordChanged = "jobboard.account.password_changed"
)

// Aggregate type constant.
const AggregateTypeAccount = "account"

// Source identifier for events originating from this service.
const SourceAccountService = "account-service"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

// AccountPasswordChangedData is the payload for an account.password_changed
// event. Emitted for both the authenticated change and the reset flow.
type AccountPasswordChangedData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Via   string `json:"via"`
}

// Password change origins recorded in AccountPasswordChangedData.Via.
const (
	ViaChange = "change"
	ViaReset  = "reset"
)

// Producer publishes account domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the account service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, cred *domain.Credential) error {
	data := AccountRegisteredData{
		ID:       cred.ID,
		Email:    cred.Email,
		UserName: cred.UserName,
		Role:     cred.Role.String(),
	}

	event, err := pkgkafka.NewEvent(TopicAccountRegistered, cred.ID, AggregateTypeAccount, SourceAccountService, data)
	if err != nil {
		return fmt.Errorf("create account.registered event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicAccountRegistered, event); err != nil {
		return fmt.Errorf("publish account.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.registered event",
		slog.String("account_id", cred.ID),
		slog.String("email", cred.Email),
	)

	return nil
}

// PublishAccountPasswordChanged publishes an account.password_changed event.
func (p *Producer) PublishAccountPasswordChanged(ctx context.Context, accountID, email, via string) error {
	data := AccountPasswordChangedData{
		ID:    accountID,
		Email: email,
		Via:   via,
	}

	event, err := pkgkafka.NewEvent(TopicAccountPasswordChanged, accountID, AggregateTypeAccount, SourceAccountService, data)
	if err != nil {
		return fmt.Errorf("create account.password_changed event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicAccountPasswordChanged, event); err != nil {
		return fmt.Errorf("publish account.password_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published account.password_changed event",
		slog.String("account_id", accountID),
		slog.String("via", via),
	)

	return nil
}
