package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/careai-platform/internal/observability/metrics"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

var tracer = otel.Tracer("careai.internal.ai.llm")

const defaultAttemptTimeout = 45 * time.Second

// FallbackClient tries its providers in order and returns the first success.
// Each provider gets exactly one attempt per call.
type FallbackClient struct {
	providers []Provider
	timeout   time.Duration
	logger    *logging.Logger
	metrics   *metrics.AIMetrics
}

// NewFallbackClient creates a client over providers in the given order.
// A non-positive timeout selects the default per-attempt limit.
func NewFallbackClient(providers []Provider, timeout time.Duration, logger *logging.Logger, m *metrics.AIMetrics) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &FallbackClient{
		providers: kept,
		timeout:   timeout,
		logger:    logger,
		metrics:   m,
	}
}

// Configured reports whether at least one provider is available.
func (c *FallbackClient) Configured() bool {
	return c != nil && len(c.providers) > 0
}

// ProviderNames lists provider names in fallback order.
func (c *FallbackClient) ProviderNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate runs prompt against each provider until one succeeds. A caller
// context that is already done stops the loop.
func (c *FallbackClient) Generate(ctx context.Context, prompt Prompt) (GenerationResult, error) {
	if !c.Configured() {
		return GenerationResult{}, ErrNoProviderConfigured
	}

	var causes []error
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			causes = append(causes, err)
			break
		}

		text, err := c.attempt(ctx, p, prompt)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback provider succeeded", "provider", p.Name(), "attempt", i+1)
			}
			return GenerationResult{Text: text, Provider: p.Name(), Model: p.Model()}, nil
		}

		causes = append(causes, fmt.Errorf("%s: %w", p.Name(), err))
		c.logger.Warn("provider failed, trying next",
			"provider", p.Name(),
			"model", p.Model(),
			"error", err.Error(),
			"remaining", len(c.providers)-i-1,
		)
	}

	return GenerationResult{}, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(causes...))
}

func (c *FallbackClient) attempt(ctx context.Context, p Provider, prompt Prompt) (string, error) {
	ctx, span := tracer.Start(ctx, "llm.generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", p.Name()),
			attribute.String("llm.model", p.Model()),
		),
	)
	defer span.End()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Generate(attemptCtx, prompt)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		c.metrics.ObserveProviderAttempt(p.Name(), "error", elapsed)
		return "", err
	}
	c.metrics.ObserveProviderAttempt(p.Name(), "ok", elapsed)
	return text, nil
}
