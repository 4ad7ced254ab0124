// Package dashboard implements the flood-risk read queries, alert
// subscriptions and narrative analysis behind the REST API.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

// High-risk feed bounds.
const (
	DefaultHighRiskLimit = 8
	MaxHighRiskLimit     = 100
)

// PublishTimeout bounds how long a subscribe request waits on the event publisher.
const PublishTimeout = 3 * time.Second

// Repository provides the stored panchayats, readings and subscriptions.
type Repository interface {
	LatestDate(ctx context.Context) (string, error)
	LatestByPanchayat(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error)
	DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error)
	DistrictNames(ctx context.Context) ([]string, error)
	History(ctx context.Context, panchayatID int64) ([]domain.Reading, error)
	CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
}

// Analyst turns a JSON payload into narrative text.
type Analyst interface {
	Analyze(ctx context.Context, payload json.RawMessage) (string, error)
}

// Publisher announces stored subscriptions to downstream consumers.
type Publisher interface {
	PublishSubscription(ctx context.Context, sub domain.Subscription) error
}

// SubscribeRequest is the input to Subscribe. A zero PanchayatID counts as missing.
type SubscribeRequest struct {
	PanchayatID   int64
	Email         string
	RiskThreshold string
}

// Service is the dashboard's application layer. Analyst and Publisher are optional.
type Service struct {
	repo      Repository
	analyst   Analyst
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. Pass nil for analyst or publisher to disable them.
func New(repo Repository, analyst Analyst, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		repo:      repo,
		analyst:   analyst,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Panchayats returns every panchayat with a reading on the globally latest
// date, optionally narrowed by district and name.
func (s *Service) Panchayats(ctx context.Context, filter domain.StatusFilter) ([]domain.PanchayatStatus, error) {
	rows, err := s.repo.LatestByPanchayat(ctx, filter)
	if err != nil {
		return nil, persistence("latest by panchayat", err)
	}
	return nonNil(rows), nil
}

// HighRisk returns up to limit High-level panchayats in Panchayats order.
// A non-positive limit selects DefaultHighRiskLimit; larger values are capped.
func (s *Service) HighRisk(ctx context.Context, limit int) ([]domain.PanchayatStatus, error) {
	switch {
	case limit <= 0:
		limit = DefaultHighRiskLimit
	case limit > MaxHighRiskLimit:
		limit = MaxHighRiskLimit
	}

	rows, err := s.repo.LatestByPanchayat(ctx, domain.StatusFilter{})
	if err != nil {
		return nil, persistence("latest by panchayat", err)
	}

	high := make([]domain.PanchayatStatus, 0, limit)
	for _, r := range rows {
		if r.RiskLevel != domain.RiskHigh {
			continue
		}
		high = append(high, r)
		if len(high) == limit {
			break
		}
	}
	return high, nil
}

// Stats counts panchayats per risk level on the latest date.
func (s *Service) Stats(ctx context.Context) (domain.RiskStats, error) {
	var stats domain.RiskStats

	rows, err := s.repo.LatestByPanchayat(ctx, domain.StatusFilter{})
	if err != nil {
		return stats, persistence("latest by panchayat", err)
	}
	latest, err := s.repo.LatestDate(ctx)
	if err != nil {
		return stats, persistence("latest date", err)
	}

	stats.LatestDate = latest
	stats.Total = len(rows)
	for _, r := range rows {
		switch r.RiskLevel {
		case domain.RiskHigh:
			stats.High++
		case domain.RiskMedium:
			stats.Medium++
		default:
			stats.Low++
		}
	}
	return stats, nil
}

// DistrictSummaries returns per-district averages on the latest date.
func (s *Service) DistrictSummaries(ctx context.Context) ([]domain.DistrictSummary, error) {
	rows, err := s.repo.DistrictSummaries(ctx)
	if err != nil {
		return nil, persistence("district summaries", err)
	}
	return nonNil(rows), nil
}

// Districts returns the distinct district names of stored panchayats.
func (s *Service) Districts(ctx context.Context) ([]string, error) {
	names, err := s.repo.DistrictNames(ctx)
	if err != nil {
		return nil, persistence("district names", err)
	}
	return nonNil(names), nil
}

// History returns a panchayat's readings, earliest first. Unknown ids yield an empty list.
func (s *Service) History(ctx context.Context, panchayatID int64) ([]domain.Reading, error) {
	rows, err := s.repo.History(ctx, panchayatID)
	if err != nil {
		return nil, persistence("history", err)
	}
	return nonNil(rows), nil
}

// Subscribe stores an alert subscription. Missing email or panchayat id is
// an ErrValidation; any storage failure, including an unknown panchayat, is
// an ErrPersistence. Event publishing failures are logged only.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (domain.Subscription, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.PanchayatID == 0 {
		return domain.Subscription{}, fmt.Errorf("%w: email and panchayat id are required", domain.ErrValidation)
	}

	threshold := strings.TrimSpace(req.RiskThreshold)
	if threshold == "" {
		threshold = domain.DefaultRiskThreshold
	}

	sub, err := s.repo.CreateSubscription(ctx, domain.Subscription{
		PanchayatID:   req.PanchayatID,
		Email:         email,
		RiskThreshold: threshold,
	})
	if err != nil {
		return domain.Subscription{}, persistence("create subscription", err)
	}
	s.metrics.SubscriptionsCreated.Inc()
	s.logger.Info("alert subscription created",
		"subscription_id", sub.ID,
		"panchayat_id", sub.PanchayatID,
		"risk_threshold", sub.RiskThreshold,
	)

	s.publish(ctx, sub)
	return sub, nil
}

func (s *Service) publish(ctx context.Context, sub domain.Subscription) {
	if s.publisher == nil {
		return
	}
	// The subscription is already stored; a client disconnect must not drop its event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := s.publisher.PublishSubscription(ctx, sub); err != nil {
		s.metrics.SubscriptionEvents.WithLabelValues("error").Inc()
		s.logger.Warn("subscription event not published", "subscription_id", sub.ID, "error", err)
		return
	}
	s.metrics.SubscriptionEvents.WithLabelValues("published").Inc()
}

// Analyze forwards payload to the analyst. A missing analyst or any analyst
// failure is reported as ErrUpstream.
func (s *Service) Analyze(ctx context.Context, payload json.RawMessage) (string, error) {
	if s.analyst == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, domain.ErrDisabled)
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	text, err := s.analyst.Analyze(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	return text, nil
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
