// Package http serves the dashboard REST API plus health, readiness and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/couchcryptid/floodguard/internal/dashboard"
	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// Dashboard is the application layer behind the API routes.
type Dashboard interface {
	Panchayats(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error)
	HighRisk(ctx context.Context, limit int) ([]domain.PanchayatStatus, error)
	Stats(ctx context.Context) (domain.RiskStats, error)
	DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error)
	Districts(ctx context.Context) ([]string, error)
	History(ctx context.Context, panchayatID int64) ([]domain.Reading, error)
	Subscribe(ctx context.Context, req dashboard.SubscribeRequest) (domain.Subscription, error)
	Analyze(ctx context.Context, payload json.RawMessage) (string, error)
}

// Options configures the listener and cross-origin policy.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// WriteTimeout must cover the slowest analysis request.
	WriteTimeout time.Duration
}

// Server exposes the dashboard API, /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the API and operational routes.
func NewServer(opts Options, svc Dashboard, ready sharedobs.ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	s := &Server{
		dashboard: svc,
		logger:    logger,
		metrics:   metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         86400,
	}).Handler)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/panchayats", s.handlePanchayats)
		r.Get("/district-summaries", s.handleDistrictSummaries)
		r.Get("/districts", s.handleDistricts)
		r.Get("/history/{panchayatID}", s.handleHistory)
		r.Get("/stats", s.handleStats)
		r.Get("/alerts/high-risk", s.handleHighRisk)
		r.Post("/alerts/subscribe", s.handleSubscribe)
		r.Post("/analyze", s.handleAnalyze)
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// instrument logs each request once and records its route metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			s.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"duration", elapsed,
				"request_id", requestID(r),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
