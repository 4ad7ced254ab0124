package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard API.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	// Seeding metrics.
	PanchayatsSeeded prometheus.Gauge
	ReadingsSeeded   prometheus.Gauge
	CatalogSkipped   prometheus.Counter

	SubscriptionsCreated prometheus.Counter
	SubscriptionEvents   *prometheus.CounterVec // labels: outcome={published,error}

	// Analysis metrics.
	AnalysisRequests *prometheus.CounterVec // labels: outcome={success,error}
	AnalysisDuration prometheus.Histogram
	AnalysisEnabled  prometheus.Gauge

	QueryCache *prometheus.CounterVec // labels: query, result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.PanchayatsSeeded,
		m.ReadingsSeeded,
		m.CatalogSkipped,
		m.SubscriptionsCreated,
		m.SubscriptionEvents,
		m.AnalysisRequests,
		m.AnalysisDuration,
		m.AnalysisEnabled,
		m.QueryCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodguard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		}, []string{"route"}),
		PanchayatsSeeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodguard",
			Name:      "panchayats_seeded",
			Help:      "Panchayats created by the most recent seeding run.",
		}),
		ReadingsSeeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodguard",
			Name:      "readings_seeded",
			Help:      "Rainfall readings created by the most recent seeding run.",
		}),
		CatalogSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "catalog_rows_skipped_total",
			Help:      "Catalog rows dropped because their district code is unknown.",
		}),
		SubscriptionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "subscriptions_created_total",
			Help:      "Alert subscriptions stored.",
		}),
		SubscriptionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "subscription_events_total",
			Help:      "Subscription events published to Kafka by outcome.",
		}, []string{"outcome"}),
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "analysis_requests_total",
			Help:      "Generative analysis requests by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodguard",
			Name:      "analysis_duration_seconds",
			Help:      "Generative analysis upstream latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		AnalysisEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodguard",
			Name:      "analysis_enabled",
			Help:      "1 when the analysis upstream is configured, 0 otherwise.",
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodguard",
			Name:      "query_cache_total",
			Help:      "Read-query cache lookups by query and result.",
		}, []string{"query", "result"}),
	}
}
