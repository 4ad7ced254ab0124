package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAIKey = "test-ai-key"

// clearAIEnv keeps a developer's real key from leaking into default assertions.
func clearAIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("AI_ENABLED", "")
	t.Setenv("KAFKA_BROKERS", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearAIEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "floodguard.db", cfg.DatabaseDSN)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.AIEnabled)
	assert.Empty(t, cfg.AIAPIKey)
	assert.Equal(t, defaultAIBaseURL, cfg.AIBaseURL)
	assert.Equal(t, "gemini-3-flash-preview", cfg.AIModel)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "alert-subscriptions", cfg.KafkaSubscriptionTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://floodguard.example")
	t.Setenv("DATABASE_DRIVER", "MySQL")
	t.Setenv("DATABASE_DSN", "user:pass@tcp(db:3306)/floodguard?parseTime=true")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("CACHE_TTL", "0s")
	t.Setenv("AI_API_KEY", testAIKey)
	t.Setenv("AI_MODEL", "gemini-2.5-flash")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SUBSCRIPTION_TOPIC", "subs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "https://floodguard.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "mysql", cfg.DatabaseDriver)
	assert.Equal(t, "user:pass@tcp(db:3306)/floodguard?parseTime=true", cfg.DatabaseDSN)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.True(t, cfg.AIEnabled)
	assert.Equal(t, testAIKey, cfg.AIAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.AIModel)
	assert.Equal(t, 10*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "subs", cfg.KafkaSubscriptionTopic)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("GEMINI_API_KEY", testAIKey)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AIEnabled)
	assert.Equal(t, testAIKey, cfg.AIAPIKey)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidAITimeout(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_TIMEOUT")
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_InvalidSeedOnStart(t *testing.T) {
	t.Setenv("SEED_ON_START", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED_ON_START")
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}

func TestLoad_AIEnabledWithoutKey(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("AI_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")
}

func TestLoad_AIExplicitlyDisabled(t *testing.T) {
	clearAIEnv(t)
	t.Setenv("AI_API_KEY", testAIKey)
	t.Setenv("AI_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AIEnabled)
}
