package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floodguard/internal/config"
	"github.com/couchcryptid/floodguard/internal/domain"
)

func TestNewSubscriptionEvent(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	sub := domain.Subscription{
		ID:            7,
		PanchayatID:   1,
		Email:         "a@b.com",
		RiskThreshold: "High",
		CreatedAt:     time.Date(2026, 10, 19, 20, 0, 0, 0, ist),
	}

	event := newSubscriptionEvent(sub)

	_, err := uuid.Parse(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionCreated, event.EventType)
	assert.Equal(t, int64(7), event.SubscriptionID)
	assert.Equal(t, int64(1), event.PanchayatID)
	assert.Equal(t, time.UTC, event.CreatedAt.Location())
	assert.True(t, sub.CreatedAt.Equal(event.CreatedAt))
}

func TestNewSubscriptionEvent_UniqueIDs(t *testing.T) {
	sub := domain.Subscription{ID: 1, PanchayatID: 1}
	assert.NotEqual(t, newSubscriptionEvent(sub).EventID, newSubscriptionEvent(sub).EventID)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)
	event := SubscriptionEvent{
		EventID:        "evt-1",
		EventType:      EventSubscriptionCreated,
		SubscriptionID: 3,
		PanchayatID:    42,
		Email:          "ward@example.org",
		RiskThreshold:  "Medium",
		CreatedAt:      now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.JSONEq(t, `{
		"event_id": "evt-1",
		"event_type": "subscription.created",
		"subscription_id": 3,
		"panchayat_id": 42,
		"email": "ward@example.org",
		"risk_threshold": "Medium",
		"created_at": "2026-10-19T14:30:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "event_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("evt-1"), msg.Headers[0].Value)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, []byte(EventSubscriptionCreated), msg.Headers[1].Value)
	assert.Equal(t, "created_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestNewWriter_BoundsRetries(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:           []string{"localhost:9092"},
		KafkaSubscriptionTopic: "alert-subscriptions",
	}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "alert-subscriptions", w.writer.Topic)
	assert.Equal(t, writeAttempts, w.writer.MaxAttempts)
	assert.Equal(t, writeTimeout, w.writer.WriteTimeout)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
}
