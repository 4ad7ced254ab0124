package seed_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floodguard/internal/adapter/gormstore"
	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
	"github.com/couchcryptid/floodguard/internal/seed"
)

func openSQLiteStore(t *testing.T) *gormstore.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "floodguard.db")
	s, err := gormstore.Open(context.Background(), "sqlite", dsn, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSeedIfEmpty_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := openSQLiteStore(t)
	catalog := domain.Catalog()

	s := seed.New(store, catalog, seed.NewRand(2026), clockwork.NewFakeClockAt(testToday),
		discardLogger(), observability.NewMetricsForTesting())

	first, err := s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CheckReadiness(ctx))
	assert.Equal(t, len(catalog)-first.CatalogSkipped, first.PanchayatsCreated)
	assert.Equal(t, first.PanchayatsCreated*seed.HistoryDays, first.ReadingsCreated)

	second, err := s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.PanchayatsCreated)
	assert.Zero(t, second.ReadingsCreated)

	nPanchayats, err := store.CountPanchayats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(first.PanchayatsCreated), nPanchayats)
	nReadings, err := store.CountReadings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(first.ReadingsCreated), nReadings)

	latest, err := store.LatestDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", latest)

	t.Run("one summary per district", func(t *testing.T) {
		names, err := store.DistrictNames(ctx)
		require.NoError(t, err)
		summaries, err := store.DistrictSummaries(ctx)
		require.NoError(t, err)

		assert.Len(t, summaries, len(names))
		for _, sum := range summaries {
			assert.Contains(t, names, sum.Name)
			assert.GreaterOrEqual(t, sum.AvgRainfall, 0.0, sum.Name)
			assert.LessOrEqual(t, sum.AvgRainfall, 180.0, sum.Name)
		}
	})

	t.Run("every panchayat has a full ascending history", func(t *testing.T) {
		panchayats, err := store.ListPanchayats(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, panchayats)

		for _, p := range panchayats {
			history, err := store.History(ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, history, seed.HistoryDays, p.Name)
			for i := 1; i < len(history); i++ {
				assert.Less(t, history[i-1].Date, history[i].Date, p.Name)
			}
			assert.Equal(t, latest, history[len(history)-1].Date, p.Name)
		}
	})

	t.Run("latest statuses cover every panchayat", func(t *testing.T) {
		rows, err := store.LatestByPanchayat(ctx, domain.StatusFilter{})
		require.NoError(t, err)
		assert.Len(t, rows, first.PanchayatsCreated)
	})
}
