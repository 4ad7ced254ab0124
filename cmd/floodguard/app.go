package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/couchcryptid/floodguard/internal/adapter/gormstore"
	"github.com/couchcryptid/floodguard/internal/config"
	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
	"github.com/couchcryptid/floodguard/internal/seed"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	store   *gormstore.Store
}

// bootstrap loads configuration, opens the store and applies migrations.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := gormstore.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, metrics: metrics, store: store}, nil
}

func (a *app) newSeeder(rng *rand.Rand) *seed.Seeder {
	return seed.New(a.store, domain.Catalog(), rng, nil, a.logger, a.metrics)
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
}

func describe(res seed.Result) string {
	return fmt.Sprintf("panchayats created: %d, catalog rows skipped: %d, readings created: %d",
		res.PanchayatsCreated, res.CatalogSkipped, res.ReadingsCreated)
}
