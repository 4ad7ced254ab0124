// Package cache memoizes the dashboard's read queries in process memory.
package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// Store is the repository being decorated.
type Store interface {
	LatestDate(ctx context.Context) (string, error)
	LatestByPanchayat(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error)
	DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error)
	DistrictNames(ctx context.Context) ([]string, error)
	History(ctx context.Context, panchayatID int64) ([]domain.Reading, error)
	CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
}

// Repository wraps a Store with a TTL cache over its read queries.
// Writes pass straight through.
type Repository struct {
	inner   Store
	cache   *gocache.Cache
	metrics *observability.Metrics

	mu         sync.Mutex // orders stores against Flush
	generation uint64
}

// NewRepository creates a cache decorator. A non-positive ttl disables caching.
func NewRepository(inner Store, ttl time.Duration, metrics *observability.Metrics) *Repository {
	r := &Repository{inner: inner, metrics: metrics}
	if ttl > 0 {
		r.cache = gocache.New(ttl, 2*ttl)
	}
	return r
}

// Flush drops every cached entry. Loads already in flight when Flush is
// called return their result but do not store it.
func (r *Repository) Flush() {
	if r.cache == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache.Flush()
}

func (r *Repository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// put caches v unless a Flush happened since gen was read.
func (r *Repository) put(key string, v any, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation == gen {
		r.cache.SetDefault(key, v)
	}
}

func (r *Repository) LatestDate(ctx context.Context) (string, error) {
	return cached(ctx, r, "latest_date", "latest_date", r.inner.LatestDate)
}

func (r *Repository) LatestByPanchayat(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error) {
	key := fmt.Sprintf("panchayats:%s|%s", filter.District, filter.Query)
	rows, err := cached(ctx, r, "panchayats", key, func(ctx context.Context) ([]domain.PanchayatStatus, error) {
		return r.inner.LatestByPanchayat(ctx, filter)
	})
	return slices.Clone(rows), err
}

func (r *Repository) DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error) {
	rows, err := cached(ctx, r, "district_summaries", "district_summaries", r.inner.DistrictSummaries)
	return slices.Clone(rows), err
}

func (r *Repository) DistrictNames(ctx context.Context) ([]string, error) {
	names, err := cached(ctx, r, "district_names", "district_names", r.inner.DistrictNames)
	return slices.Clone(names), err
}

func (r *Repository) History(ctx context.Context, panchayatID int64) ([]domain.Reading, error) {
	key := fmt.Sprintf("history:%d", panchayatID)
	rows, err := cached(ctx, r, "history", key, func(ctx context.Context) ([]domain.Reading, error) {
		return r.inner.History(ctx, panchayatID)
	})
	return slices.Clone(rows), err
}

func (r *Repository) CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	return r.inner.CreateSubscription(ctx, sub)
}

// cached serves key from the cache or loads and stores it. Errors are never cached.
func cached[T any](ctx context.Context, r *Repository, query, key string, load func(context.Context) (T, error)) (T, error) {
	if r.cache == nil {
		return load(ctx)
	}
	if v, ok := r.cache.Get(key); ok {
		r.metrics.QueryCache.WithLabelValues(query, "hit").Inc()
		return v.(T), nil
	}
	r.metrics.QueryCache.WithLabelValues(query, "miss").Inc()

	gen := r.currentGeneration()
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	r.put(key, v, gen)
	return v, nil
}
