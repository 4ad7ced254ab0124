// Package kafka publishes alert-subscription events for downstream notifiers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/floodguard/internal/config"
	"github.com/couchcryptid/floodguard/internal/domain"
)

// EventSubscriptionCreated is the event_type header of new-subscription messages.
const EventSubscriptionCreated = "subscription.created"

// Publishing sits on the subscribe request path, so retries stay short.
const (
	writeAttempts = 2
	writeTimeout  = time.Second
)

// SubscriptionEvent is the message body published for each stored subscription.
type SubscriptionEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SubscriptionID int64     `json:"subscription_id"`
	PanchayatID    int64     `json:"panchayat_id"`
	Email          string    `json:"email"`
	RiskThreshold  string    `json:"risk_threshold"`
	CreatedAt      time.Time `json:"created_at"`
}

// Writer produces subscription events to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured subscription topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSubscriptionTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond, // one event per request
		MaxAttempts:            writeAttempts,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSubscription writes one event for sub, keyed by panchayat so a
// panchayat's subscriptions stay ordered within a partition.
func (w *Writer) PublishSubscription(ctx context.Context, sub domain.Subscription) error {
	msg, err := serializeToMessage(newSubscriptionEvent(sub))
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish subscription %d: %w", sub.ID, err)
	}
	w.logger.Debug("subscription event published", "subscription_id", sub.ID, "panchayat_id", sub.PanchayatID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func newSubscriptionEvent(sub domain.Subscription) SubscriptionEvent {
	return SubscriptionEvent{
		EventID:        uuid.NewString(),
		EventType:      EventSubscriptionCreated,
		SubscriptionID: sub.ID,
		PanchayatID:    sub.PanchayatID,
		Email:          sub.Email,
		RiskThreshold:  sub.RiskThreshold,
		CreatedAt:      sub.CreatedAt.UTC(),
	}
}

// serializeToMessage marshals a SubscriptionEvent into a Kafka message.
func serializeToMessage(event SubscriptionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize subscription event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(event.PanchayatID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "created_at", Value: []byte(event.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
