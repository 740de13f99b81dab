package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/careai-platform/internal/ai"
	httpmiddleware "github.com/wolfman30/careai-platform/internal/http/middleware"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	// Context bounds background work started by middleware.
	Context            context.Context
	Logger             *logging.Logger
	AIHandler          *ai.Handler
	JWTSecret          string
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP limit on /api routes; zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	if cfg.AIHandler == nil {
		return r
	}

	r.Route("/api/ai", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		api.Use(httpmiddleware.UserJWT(cfg.JWTSecret))
		api.Post("/execute", cfg.AIHandler.Execute)
		api.Get("/skills", cfg.AIHandler.ListSkills)
	})

	r.Route("/admin/ai", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		admin.Get("/stats", cfg.AIHandler.Stats)
		admin.Get("/compliance-events", cfg.AIHandler.ComplianceEvents)
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
