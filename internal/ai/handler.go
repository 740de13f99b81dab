package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/careai-platform/internal/ai/safety"
	"github.com/wolfman30/careai-platform/internal/ai/skills"
	"github.com/wolfman30/careai-platform/internal/compliance"
	httpmiddleware "github.com/wolfman30/careai-platform/internal/http/middleware"
	"github.com/wolfman30/careai-platform/internal/observability/metrics"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

const maxEventsLimit = 500

type skillRunner interface {
	Execute(ctx context.Context, req SkillRequest) Envelope
}

type complianceQuerier interface {
	QueryEvents(ctx context.Context, filter compliance.AuditFilter) ([]compliance.AuditEvent, error)
}

// Handler exposes the skill pipeline over HTTP.
type Handler struct {
	runner    skillRunner
	gatherer  prometheus.Gatherer
	events    complianceQuerier
	providers []string
	logger    *logging.Logger
}

type HandlerConfig struct {
	Runner   skillRunner
	Gatherer prometheus.Gatherer
	// Events backs the compliance event listing; nil disables it.
	Events    complianceQuerier
	Providers []string
	Logger    *logging.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		runner:    cfg.Runner,
		gatherer:  cfg.Gatherer,
		events:    cfg.Events,
		providers: cfg.Providers,
		logger:    cfg.Logger,
	}
}

type executeRequest struct {
	Skill         skills.ID              `json:"skill"`
	Input         map[string]any         `json:"input"`
	Context       *skills.RequestContext `json:"context,omitempty"`
	Language      string                 `json:"language,omitempty"`
	TicketID      string                 `json:"ticketId,omitempty"`
	AppointmentID string                 `json:"appointmentId,omitempty"`
}

// Execute handles POST /api/ai/execute. Pipeline failures are reported in
// the envelope with status 200.
func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req executeRequest
	body := http.MaxBytesReader(w, r.Body, 2*safety.MaxInputBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeJSON(w, status, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Skill == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "skill is required"})
		return
	}

	env := h.runner.Execute(r.Context(), SkillRequest{
		Skill:         req.Skill,
		Input:         req.Input,
		Context:       req.Context,
		UserID:        user.ID,
		UserRole:      user.Role,
		Language:      req.Language,
		TicketID:      req.TicketID,
		AppointmentID: req.AppointmentID,
	})
	writeJSON(w, http.StatusOK, env)
}

type skillInfo struct {
	ID           skills.ID `json:"id"`
	RequiredKeys []string  `json:"requiredKeys"`
	MaxTokens    int32     `json:"maxTokens"`
	Temperature  float32   `json:"temperature"`
}

// ListSkills handles GET /api/ai/skills.
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	ids := skills.Supported()
	out := make([]skillInfo, 0, len(ids))
	for _, id := range ids {
		handler, err := skills.Lookup(id)
		if err != nil {
			continue
		}
		out = append(out, skillInfo{
			ID:           id,
			RequiredKeys: handler.RequiredKeys(),
			MaxTokens:    handler.MaxTokens(),
			Temperature:  handler.Temperature(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skills":    out,
		"languages": []compliance.Language{compliance.LanguageArabic, compliance.LanguageFrench, compliance.LanguageEnglish},
	})
}

// Stats handles GET /admin/ai/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := metrics.Snapshot(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather ai stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": h.providers,
		"stats":     stats,
	})
}

// ComplianceEvents handles GET /admin/ai/compliance-events.
func (h *Handler) ComplianceEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "compliance events not configured"})
		return
	}

	q := r.URL.Query()
	filter := compliance.AuditFilter{
		UserID:    strings.TrimSpace(q.Get("user_id")),
		Skill:     strings.TrimSpace(q.Get("skill")),
		EventType: compliance.AuditEventType(strings.TrimSpace(q.Get("event_type"))),
		Limit:     100,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = min(n, maxEventsLimit)
	}
	for key, dst := range map[string]*time.Time{"since": &filter.StartTime, "until": &filter.EndTime} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": key + " must be RFC3339"})
			return
		}
		*dst = t
	}

	events, err := h.events.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query compliance events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to query events"})
		return
	}
	if events == nil {
		events = []compliance.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
