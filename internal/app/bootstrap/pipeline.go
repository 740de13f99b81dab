package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/careai-platform/internal/ai"
	"github.com/wolfman30/careai-platform/internal/ai/audit"
	"github.com/wolfman30/careai-platform/internal/ai/llm"
	"github.com/wolfman30/careai-platform/internal/ai/safety"
	"github.com/wolfman30/careai-platform/internal/compliance"
	appconfig "github.com/wolfman30/careai-platform/internal/config"
	"github.com/wolfman30/careai-platform/internal/observability/metrics"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

// PipelineDeps are the optional infrastructure handles. Any nil field turns
// the matching feature off.
type PipelineDeps struct {
	Pool       *pgxpool.Pool
	SQLDB      *sql.DB
	Redis      *redis.Client
	AWS        *aws.Config
	HTTPClient *http.Client
	Registerer prometheus.Registerer
}

// Pipeline is the wired skill executor plus the pieces the HTTP layer and
// admin endpoints need.
type Pipeline struct {
	Executor   *ai.Executor
	Client     *llm.FallbackClient
	Metrics    *metrics.AIMetrics
	Compliance *compliance.AuditService
	cleanup    func()
}

// Close releases provider clients. Shared handles in PipelineDeps stay open.
func (p *Pipeline) Close() {
	if p != nil && p.cleanup != nil {
		p.cleanup()
	}
}

// BuildPipeline wires providers, safety gate, audit logger and compliance
// recorder into an executor.
func BuildPipeline(ctx context.Context, cfg appconfig.AIConfig, deps PipelineDeps, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	providers, cleanup, err := BuildProviders(ctx, cfg, deps.AWS, deps.HTTPClient, logger)
	if err != nil {
		return nil, err
	}

	aiMetrics := metrics.NewAIMetrics(deps.Registerer)
	client := llm.NewFallbackClient(providers, cfg.ProviderTimeout, logger, aiMetrics)

	var gateOpts []safety.Option
	if cfg.RateLimitPerHr > 0 {
		if deps.Redis == nil {
			logger.Warn("ai rate limit configured without redis; limiter disabled", "limit_per_hour", cfg.RateLimitPerHr)
		} else {
			limiter, err := safety.NewRedisRateLimiter(deps.Redis, cfg.RateLimitPerHr)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("bootstrap: rate limiter: %w", err)
			}
			gateOpts = append(gateOpts, safety.WithRateLimiter(limiter))
			logger.Info("ai rate limiter enabled", "limit_per_hour", cfg.RateLimitPerHr)
		}
	}
	gate := safety.NewGate(logger, gateOpts...)

	var auditLogger *audit.Logger
	if deps.Pool != nil {
		auditLogger = audit.NewLogger(audit.NewPostgresStore(deps.Pool), audit.NewPostgresUsageTracker(deps.Pool), logger)
	} else {
		logger.Warn("no database configured; ai audit trail disabled")
		auditLogger = audit.NewLogger(nil, nil, logger)
	}

	opts := []ai.Option{
		ai.WithMetrics(aiMetrics),
		ai.WithPromptPIIMasking(cfg.MaskPromptPII),
	}
	var complianceSvc *compliance.AuditService
	if deps.SQLDB != nil {
		complianceSvc = compliance.NewAuditService(deps.SQLDB)
		opts = append(opts, ai.WithCompliance(complianceSvc))
	}

	executor := ai.NewExecutor(client, gate, auditLogger, logger, opts...)
	logger.Info("ai pipeline ready",
		"providers", client.ProviderNames(),
		"audit", deps.Pool != nil,
		"compliance", complianceSvc != nil,
		"mask_prompt_pii", cfg.MaskPromptPII,
	)

	return &Pipeline{
		Executor:   executor,
		Client:     client,
		Metrics:    aiMetrics,
		Compliance: complianceSvc,
		cleanup:    cleanup,
	}, nil
}
