package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Local text-generation backend (tried first)
	OllamaBaseURL string
	OllamaModel   string

	// Paid text-generation backends (fallbacks, in this order)
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	AIProviderTimeout  time.Duration
	AIRateLimitPerHour int
	AIMaskPromptPII    bool

	JWTSecret          string
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	HTTPRateLimitRPS   float64
	HTTPRateLimitBurst int
}

// AIConfig is the immutable slice of configuration handed to the skill
// pipeline at startup. Business logic never reads the environment directly.
type AIConfig struct {
	OllamaBaseURL   string
	OllamaModel     string
	GeminiAPIKey    string
	GeminiModel     string
	BedrockModelID  string
	ProviderTimeout time.Duration
	RateLimitPerHr  int
	MaskPromptPII   bool
}

// HasProvider reports whether at least one generation backend is configured.
func (c AIConfig) HasProvider() bool {
	return c.OllamaBaseURL != "" || c.GeminiAPIKey != "" || c.BedrockModelID != ""
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		OllamaBaseURL: strings.TrimRight(getEnv("OLLAMA_BASE_URL", ""), "/"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3.1"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AIProviderTimeout:  getEnvAsDuration("AI_PROVIDER_TIMEOUT", 45*time.Second),
		AIRateLimitPerHour: getEnvAsInt("AI_RATE_LIMIT_PER_HOUR", 0),
		AIMaskPromptPII:    getEnvAsBool("AI_MASK_PROMPT_PII", false),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		HTTPRateLimitRPS:   getEnvAsFloat("HTTP_RATE_LIMIT_RPS", 5),
		HTTPRateLimitBurst: getEnvAsInt("HTTP_RATE_LIMIT_BURST", 20),
	}
}

// AI returns the pipeline configuration.
func (c *Config) AI() AIConfig {
	return AIConfig{
		OllamaBaseURL:   c.OllamaBaseURL,
		OllamaModel:     c.OllamaModel,
		GeminiAPIKey:    c.GeminiAPIKey,
		GeminiModel:     c.GeminiModel,
		BedrockModelID:  c.BedrockModelID,
		ProviderTimeout: c.AIProviderTimeout,
		RateLimitPerHr:  c.AIRateLimitPerHour,
		MaskPromptPII:   c.AIMaskPromptPII,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
