package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelopeRoundTrip(t *testing.T) {
	type payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	event, err := NewEvent("jobboard.account.registered", "acc-1", "account", "account-service", payload{
		ID:    "acc-1",
		Email: "dev@example.com",
	})
	require.NoError(t, err)
	event.WithCorrelationID("corr-123")

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())

	raw, err := event.Marshal()
	require.NoError(t, err)

	// A consumer decodes the envelope first, then the typed payload.
	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "jobboard.account.registered", decoded.EventType)
	assert.Equal(t, "corr-123", decoded.CorrelationID)

	var got payload
	require.NoError(t, decoded.UnmarshalData(&got))
	assert.Equal(t, "dev@example.com", got.Email)
}

func TestNewEventRejectsUnserializablePayload(t *testing.T) {
	_, err := NewEvent("jobboard.account.registered", "acc-1", "account", "account-service", make(chan int))
	assert.Error(t, err)
}
