// Package llm produces narrative flood-risk analyses through an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/couchcryptid/floodguard/internal/domain"
	"github.com/couchcryptid/floodguard/internal/observability"
)

const (
	systemInstruction = "You are FloodGuard AI, an expert hydrologist specializing in Kerala's local geography " +
		"and Panchayat-level disaster management. Provide hyper-local, actionable insights."
	promptPrefix = "Analyze this flood risk data for Kerala Panchayats and provide a granular summary of " +
		"high-risk local areas and specific community-level actions. Data: "
)

// Options configures the upstream model endpoint.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Analyst sends dashboard data to the model and returns its narrative.
type Analyst struct {
	client  openai.Client
	model   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnalyst creates an Analyst. Requests are not retried.
func NewAnalyst(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Analyst {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &Analyst{
		client:  openai.NewClient(reqOpts...),
		model:   opts.Model,
		logger:  logger,
		metrics: metrics,
	}
}

// Analyze returns the model's text for payload, which is embedded verbatim
// in the prompt. Any upstream failure is wrapped in domain.ErrUpstream.
func (a *Analyst) Analyze(ctx context.Context, payload json.RawMessage) (string, error) {
	start := time.Now()
	text, err := a.complete(ctx, payload)
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.metrics.AnalysisRequests.WithLabelValues("error").Inc()
		a.logger.Error("analysis request failed", "model", a.model, "error", err)
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	a.metrics.AnalysisRequests.WithLabelValues("success").Inc()
	return text, nil
}

func (a *Analyst) complete(ctx context.Context, payload json.RawMessage) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(promptPrefix + string(payload)),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("model returned status %d", apiErr.StatusCode)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}
