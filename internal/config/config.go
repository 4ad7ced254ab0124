package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const defaultAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	DatabaseDriver string
	DatabaseDSN    string
	SeedOnStart    bool
	CacheTTL       time.Duration

	// Generative analysis configuration.
	AIAPIKey  string
	AIEnabled bool
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration

	// Subscription events; publishing is off when no brokers are set.
	KafkaBrokers           []string
	KafkaSubscriptionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	aiTimeout, err := parsePositiveDuration("AI_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("CACHE_TTL", "5m"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid CACHE_TTL")
	}

	seedOnStart, err := strconv.ParseBool(sharedcfg.EnvOrDefault("SEED_ON_START", "true"))
	if err != nil {
		return nil, errors.New("invalid SEED_ON_START")
	}

	aiKey := os.Getenv("AI_API_KEY")
	if aiKey == "" {
		aiKey = os.Getenv("GEMINI_API_KEY")
	}
	aiEnabled := aiKey != ""
	if v := os.Getenv("AI_ENABLED"); v != "" {
		aiEnabled = v == "true"
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":3000"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		DatabaseDriver: strings.ToLower(sharedcfg.EnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:    sharedcfg.EnvOrDefault("DATABASE_DSN", "floodguard.db"),
		SeedOnStart:    seedOnStart,
		CacheTTL:       cacheTTL,

		AIAPIKey:  aiKey,
		AIEnabled: aiEnabled,
		AIBaseURL: sharedcfg.EnvOrDefault("AI_BASE_URL", defaultAIBaseURL),
		AIModel:   sharedcfg.EnvOrDefault("AI_MODEL", "gemini-3-flash-preview"),
		AITimeout: aiTimeout,

		KafkaBrokers:           brokers,
		KafkaSubscriptionTopic: sharedcfg.EnvOrDefault("KAFKA_SUBSCRIPTION_TOPIC", "alert-subscriptions"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "sqlite3", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, errors.New("DATABASE_DSN is required")
	}
	if cfg.AIEnabled && cfg.AIAPIKey == "" {
		return nil, errors.New("AI_ENABLED is true but AI_API_KEY is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSubscriptionTopic == "" {
		return nil, errors.New("KAFKA_SUBSCRIPTION_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
