package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/careai-platform/cmd/mainconfig"
	"github.com/wolfman30/careai-platform/internal/ai"
	"github.com/wolfman30/careai-platform/internal/api/router"
	"github.com/wolfman30/careai-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/careai-platform/internal/config"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting careai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var awsCfg *aws.Config
	if cfg.BedrockModelID != "" {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	registry, metricsHandler := setupMetrics()
	pipeline, err := bootstrap.BuildPipeline(ctx, cfg.AI(), bootstrap.PipelineDeps{
		Pool:       pool,
		SQLDB:      bootstrap.SQLFromPool(pool),
		Redis:      redisClient,
		AWS:        awsCfg,
		Registerer: registry,
	}, logger)
	if err != nil {
		logger.Error("failed to build ai pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	handlerCfg := ai.HandlerConfig{
		Runner:    pipeline.Executor,
		Gatherer:  registry,
		Providers: pipeline.Client.ProviderNames(),
		Logger:    logger,
	}
	if pipeline.Compliance != nil {
		handlerCfg.Events = pipeline.Compliance
	}

	r := router.New(&router.Config{
		Context:            ctx,
		Logger:             logger,
		AIHandler:          ai.NewHandler(handlerCfg),
		JWTSecret:          cfg.JWTSecret,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.HTTPRateLimitRPS,
		RateLimitBurst:     cfg.HTTPRateLimitBurst,
	})

	// Generation can take up to the provider timeout per backend.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.AIProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// connectPostgresPool returns nil when the URL is empty or the database is
// unreachable, leaving the service up without an audit trail.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	pool, err := bootstrap.BuildPostgresPool(ctx, url, logger)
	if err != nil {
		logger.Error("postgres unavailable; continuing without persistence", "error", err)
		return nil
	}
	return pool
}
