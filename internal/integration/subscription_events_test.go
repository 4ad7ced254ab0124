//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/floodguard/internal/adapter/gormstore"
	"github.com/couchcryptid/floodguard/internal/adapter/kafka"
	"github.com/couchcryptid/floodguard/internal/config"
	"github.com/couchcryptid/floodguard/internal/dashboard"
	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
	"github.com/couchcryptid/floodguard/internal/seed"
)

const testTopic = "test-alert-subscriptions"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("floodguard-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestSubscribePublishesEvent seeds a real SQLite store, subscribes through
// the dashboard service and reads the resulting event back from Kafka.
func TestSubscribePublishesEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	store, err := gormstore.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "it.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	metrics := observability.NewMetricsForTesting()
	seeder := seed.New(store, domain.Catalog(), seed.NewRand(42), nil, discardLogger(), metrics)
	_, err = seeder.SeedIfEmpty(ctx)
	require.NoError(t, err)

	writer := kafka.NewWriter(&config.Config{
		KafkaBrokers:           []string{broker},
		KafkaSubscriptionTopic: testTopic,
	}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	svc := dashboard.New(store, nil, writer, discardLogger(), metrics)
	sub, err := svc.Subscribe(ctx, dashboard.SubscribeRequest{PanchayatID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read subscription event")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "1", string(msg.Key))
	assert.Equal(t, kafka.EventSubscriptionCreated, headers["event_type"])
	assert.NotEmpty(t, headers["event_id"])

	var event kafka.SubscriptionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, sub.ID, event.SubscriptionID)
	assert.Equal(t, int64(1), event.PanchayatID)
	assert.Equal(t, "a@b.com", event.Email)
	assert.Equal(t, "High", event.RiskThreshold)
	assert.Equal(t, headers["event_id"], event.EventID)
}
