package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/careai-platform/internal/ai/llm"
	appconfig "github.com/wolfman30/careai-platform/internal/config"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

// BuildProviders returns the configured generation backends in fallback
// order: local Ollama, then Gemini, then Bedrock. The returned cleanup
// releases provider clients and is never nil.
func BuildProviders(ctx context.Context, cfg appconfig.AIConfig, awsCfg *aws.Config, httpClient *http.Client, logger *logging.Logger) ([]llm.Provider, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if !cfg.HasProvider() {
		logger.Warn("no text-generation provider configured; skill requests will be refused")
		return nil, func() {}, nil
	}

	var (
		providers []llm.Provider
		closers   []func()
	)
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if base := strings.TrimSpace(cfg.OllamaBaseURL); base != "" {
		providers = append(providers, llm.NewOllamaProvider(base, cfg.OllamaModel, httpClient))
		logger.Info("ollama provider enabled", "endpoint", base, "model", cfg.OllamaModel)
	}

	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		gemini, err := llm.NewGeminiProvider(ctx, key, cfg.GeminiModel)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("bootstrap: gemini provider: %w", err)
		}
		providers = append(providers, gemini)
		closers = append(closers, func() { _ = gemini.Close() })
		logger.Info("gemini provider enabled", "model", gemini.Model())
	}

	if model := strings.TrimSpace(cfg.BedrockModelID); model != "" {
		if awsCfg == nil {
			logger.Warn("bedrock model configured without aws config; skipping", "model", model)
		} else {
			bedrock, err := llm.NewBedrockProvider(bedrockruntime.NewFromConfig(*awsCfg), model)
			if err != nil {
				cleanup()
				return nil, func() {}, fmt.Errorf("bootstrap: bedrock provider: %w", err)
			}
			providers = append(providers, bedrock)
			logger.Info("bedrock provider enabled", "model", model, "region", awsCfg.Region)
		}
	}

	if len(providers) == 0 {
		logger.Warn("no usable text-generation provider; skill requests will be refused")
	}
	return providers, cleanup, nil
}
