package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// --- mock for cache tests ---

type countingStore struct {
	statusCalls  int
	historyCalls int
	summaryCalls int
	namesCalls   int
	subCalls     int
	err          error
}

func (m *countingStore) LatestDate(context.Context) (string, error) {
	return "2026-10-19", m.err
}

func (m *countingStore) LatestByPanchayat(_ context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error) {
	m.statusCalls++
	if m.err != nil {
		return nil, m.err
	}
	return []domain.PanchayatStatus{{Panchayat: domain.Panchayat{ID: 1, Name: "Aroor", District: filter.District}}}, nil
}

func (m *countingStore) DistrictSummaries(context.Context) ([]domain.DistrictSummary, error) {
	m.summaryCalls++
	return []domain.DistrictSummary{{Name: "Alappuzha"}}, m.err
}

func (m *countingStore) DistrictNames(context.Context) ([]string, error) {
	m.namesCalls++
	return []string{"Alappuzha", "Kozhikode"}, m.err
}

func (m *countingStore) History(_ context.Context, id int64) ([]domain.Reading, error) {
	m.historyCalls++
	return []domain.Reading{{PanchayatID: id, Date: "2026-10-19"}}, m.err
}

func (m *countingStore) CreateSubscription(_ context.Context, sub domain.Subscription) (domain.Subscription, error) {
	m.subCalls++
	sub.ID = int64(m.subCalls)
	return sub, m.err
}

// --- Repository tests ---

func TestRepository_LatestByPanchayatCacheHit(t *testing.T) {
	inner := &countingStore{}
	metrics := observability.NewMetricsForTesting()
	repo := NewRepository(inner, time.Minute, metrics)

	filter := domain.StatusFilter{District: "Alappuzha"}
	r1, err := repo.LatestByPanchayat(context.Background(), filter)
	require.NoError(t, err)
	r2, err := repo.LatestByPanchayat(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.statusCalls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryCache.WithLabelValues("panchayats", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryCache.WithLabelValues("panchayats", "miss")), 0)
}

func TestRepository_DifferentFiltersMiss(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	_, _ = repo.LatestByPanchayat(context.Background(), domain.StatusFilter{District: "Alappuzha"})
	_, _ = repo.LatestByPanchayat(context.Background(), domain.StatusFilter{District: "Kozhikode"})
	_, _ = repo.LatestByPanchayat(context.Background(), domain.StatusFilter{District: "Kozhikode", Query: "ku"})

	assert.Equal(t, 3, inner.statusCalls)
}

func TestRepository_HistoryKeyedByPanchayat(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	_, _ = repo.History(context.Background(), 1)
	_, _ = repo.History(context.Background(), 1)
	_, _ = repo.History(context.Background(), 2)

	assert.Equal(t, 2, inner.historyCalls)
}

func TestRepository_ErrorsNotCached(t *testing.T) {
	inner := &countingStore{err: errors.New("db down")}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	_, err := repo.LatestByPanchayat(context.Background(), domain.StatusFilter{})
	require.Error(t, err)

	inner.err = nil
	rows, err := repo.LatestByPanchayat(context.Background(), domain.StatusFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 2, inner.statusCalls)
}

func TestRepository_ZeroTTLDisablesCache(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, 0, observability.NewMetricsForTesting())

	_, _ = repo.DistrictSummaries(context.Background())
	_, _ = repo.DistrictSummaries(context.Background())

	assert.Equal(t, 2, inner.summaryCalls)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	names, err := repo.DistrictNames(context.Background())
	require.NoError(t, err)
	names[0] = "mutated"

	again, err := repo.DistrictNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alappuzha", "Kozhikode"}, again)
	assert.Equal(t, 1, inner.namesCalls)
}

func TestRepository_Flush(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	_, _ = repo.DistrictSummaries(context.Background())
	repo.Flush()
	_, _ = repo.DistrictSummaries(context.Background())

	assert.Equal(t, 2, inner.summaryCalls)
}

// gatedStore snapshots its row count when a load starts, then blocks the
// first load until release is closed.
type gatedStore struct {
	countingStore
	rows    int
	started chan struct{}
	release chan struct{}
}

func (g *gatedStore) LatestByPanchayat(context.Context, domain.StatusFilter) ([]domain.PanchayatStatus, error) {
	n := g.rows
	if release := g.release; release != nil {
		g.release = nil
		close(g.started)
		<-release
	}
	out := make([]domain.PanchayatStatus, n)
	for i := range out {
		out[i].ID = int64(i + 1)
	}
	return out, nil
}

func TestRepository_FlushDuringLoadDropsStaleResult(t *testing.T) {
	release := make(chan struct{})
	inner := &gatedStore{started: make(chan struct{}), release: release}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	stale := make(chan []domain.PanchayatStatus, 1)
	go func() {
		rows, _ := repo.LatestByPanchayat(context.Background(), domain.StatusFilter{})
		stale <- rows
	}()

	<-inner.started
	inner.rows = 1
	repo.Flush()
	close(release)
	assert.Empty(t, <-stale)

	got, err := repo.LatestByPanchayat(context.Background(), domain.StatusFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRepository_SubscriptionPassesThrough(t *testing.T) {
	inner := &countingStore{}
	repo := NewRepository(inner, time.Minute, observability.NewMetricsForTesting())

	_, err := repo.CreateSubscription(context.Background(), domain.Subscription{PanchayatID: 1, Email: "a@b.com"})
	require.NoError(t, err)
	_, err = repo.CreateSubscription(context.Background(), domain.Subscription{PanchayatID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.subCalls)
}
