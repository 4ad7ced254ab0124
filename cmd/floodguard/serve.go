package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/floodguard/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/floodguard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/floodguard/internal/adapter/kafka"
	"github.com/couchcryptid/floodguard/internal/adapter/llm"
	"github.com/couchcryptid/floodguard/internal/dashboard"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// analysisWriteMargin is added to AI_TIMEOUT to size the HTTP write timeout.
const analysisWriteMargin = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed if empty and serve the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger, metrics := a.cfg, a.logger, a.metrics

	repo := cache.NewRepository(a.store, cfg.CacheTTL, metrics)

	// Analysis is feature-flagged via AI_ENABLED / AI_API_KEY.
	var analyst dashboard.Analyst
	if cfg.AIEnabled {
		analyst = llm.NewAnalyst(llm.Options{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}, logger, metrics)
		metrics.AnalysisEnabled.Set(1)
		logger.Info("ai analysis enabled", "model", cfg.AIModel, "timeout", cfg.AITimeout)
	} else {
		logger.Info("ai analysis disabled")
	}

	// Subscription events are published only when KAFKA_BROKERS is set.
	var publisher dashboard.Publisher
	var writer *kafkaadapter.Writer
	if len(cfg.KafkaBrokers) > 0 {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("subscription events enabled", "topic", cfg.KafkaSubscriptionTopic)
	}

	svc := dashboard.New(repo, analyst, publisher, logger, metrics)
	seeder := a.newSeeder(nil)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		WriteTimeout:   cfg.AITimeout + analysisWriteMargin,
	}, svc, observability.AllReady(a.store, seeder), logger, metrics)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Seed in the background; /readyz reports 503 until it finishes.
	if cfg.SeedOnStart {
		go func() {
			if _, err := seeder.SeedIfEmpty(ctx); err != nil {
				logger.Error("seeding failed", "error", err)
				return
			}
			repo.Flush()
		}()
	} else {
		seeder.MarkReady()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
