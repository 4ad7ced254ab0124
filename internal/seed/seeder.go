// Package seed populates the store with the panchayat catalog and synthetic
// rainfall history on first start.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// Store is the persistence the seeder writes to. Existence is checked by count.
type Store interface {
	CountPanchayats(ctx context.Context) (int64, error)
	CreatePanchayats(ctx context.Context, items []domain.Panchayat) ([]domain.Panchayat, error)
	ListPanchayats(ctx context.Context) ([]domain.Panchayat, error)
	CountReadings(ctx context.Context) (int64, error)
	CreateReadings(ctx context.Context, items []domain.Reading) error
}

// Result reports what a seeding run wrote.
type Result struct {
	PanchayatsCreated int
	CatalogSkipped    int
	ReadingsCreated   int
}

// Seeder runs the one-way "unseeded -> seeded" transition.
type Seeder struct {
	store   Store
	catalog []domain.CatalogEntry
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool

	mu  sync.Mutex // guards rng and serializes runs
	rng *rand.Rand
}

// New creates a Seeder. A nil rng draws from random state; a nil clock uses real time.
func New(store Store, catalog []domain.CatalogEntry, rng *rand.Rand, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Seeder {
	if rng == nil {
		rng = NewRand(0)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Seeder{
		store:   store,
		catalog: catalog,
		rng:     rng,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a seeding run has completed.
func (s *Seeder) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("seeding has not completed yet")
	}
	return nil
}

// MarkReady flags the data as available without seeding, for deployments
// that disable seeding on start.
func (s *Seeder) MarkReady() {
	s.ready.Store(true)
}

// SeedIfEmpty inserts panchayats when none exist, then readings when none
// exist. Each table is checked independently, so repeated runs write nothing.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result

	created, skipped, err := s.seedPanchayats(ctx)
	if err != nil {
		return res, err
	}
	res.PanchayatsCreated = created
	res.CatalogSkipped = skipped

	readings, err := s.seedReadings(ctx)
	if err != nil {
		return res, err
	}
	res.ReadingsCreated = readings

	s.metrics.PanchayatsSeeded.Set(float64(res.PanchayatsCreated))
	s.metrics.ReadingsSeeded.Set(float64(res.ReadingsCreated))
	s.ready.Store(true)

	s.logger.Info("seeding complete",
		"panchayats_created", res.PanchayatsCreated,
		"catalog_skipped", res.CatalogSkipped,
		"readings_created", res.ReadingsCreated,
	)
	return res, nil
}

func (s *Seeder) seedPanchayats(ctx context.Context) (created, skipped int, err error) {
	n, err := s.store.CountPanchayats(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("check panchayats: %w", err)
	}
	if n > 0 {
		s.logger.Debug("panchayats already seeded", "count", n)
		return 0, 0, nil
	}

	panchayats, dropped := BuildPanchayats(s.catalog, s.rng)
	for _, e := range dropped {
		s.logger.Debug("catalog row skipped", "code", e.Code, "name", e.Name)
	}
	s.metrics.CatalogSkipped.Add(float64(len(dropped)))

	stored, err := s.store.CreatePanchayats(ctx, panchayats)
	if err != nil {
		return 0, len(dropped), fmt.Errorf("seed panchayats: %w", err)
	}
	return len(stored), len(dropped), nil
}

func (s *Seeder) seedReadings(ctx context.Context) (int, error) {
	n, err := s.store.CountReadings(ctx)
	if err != nil {
		return 0, fmt.Errorf("check readings: %w", err)
	}
	if n > 0 {
		s.logger.Debug("readings already seeded", "count", n)
		return 0, nil
	}

	panchayats, err := s.store.ListPanchayats(ctx)
	if err != nil {
		return 0, fmt.Errorf("list panchayats: %w", err)
	}

	readings := BuildReadings(panchayats, s.clock.Now(), HistoryDays, s.rng)
	if err := s.store.CreateReadings(ctx, readings); err != nil {
		return 0, fmt.Errorf("seed readings: %w", err)
	}
	return len(readings), nil
}
