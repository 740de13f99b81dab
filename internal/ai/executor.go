package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/careai-platform/internal/ai/audit"
	"github.com/wolfman30/careai-platform/internal/ai/llm"
	"github.com/wolfman30/careai-platform/internal/ai/safety"
	"github.com/wolfman30/careai-platform/internal/ai/skills"
	"github.com/wolfman30/careai-platform/internal/compliance"
	httpmiddleware "github.com/wolfman30/careai-platform/internal/http/middleware"
	"github.com/wolfman30/careai-platform/internal/observability/metrics"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

var tracer = otel.Tracer("careai.internal.ai")

const complianceTimeout = 5 * time.Second

// Generator produces text from the configured backends.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, p llm.Prompt) (llm.GenerationResult, error)
}

// AuditLogger persists one entry per request and never fails the caller.
type AuditLogger interface {
	Log(ctx context.Context, e audit.Entry) string
}

// ComplianceRecorder receives classification-only compliance events.
type ComplianceRecorder interface {
	LogEmergencyDetected(ctx context.Context, userID, role, skill string, lang compliance.Language, categories []string) error
	LogResponseModified(ctx context.Context, userID, role, skill string, lang compliance.Language, warnings []string) error
	LogResponseRejected(ctx context.Context, userID, role, skill string, lang compliance.Language, requiredKeys []string) error
	LogQuotaExceeded(ctx context.Context, userID, role, skill string, lang compliance.Language, reason string) error
}

// Executor sequences one skill request through the pipeline. It is safe for
// concurrent use.
type Executor struct {
	generator     Generator
	gate          *safety.Gate
	audit         AuditLogger
	compliance    ComplianceRecorder
	metrics       *metrics.AIMetrics
	logger        *logging.Logger
	maskPromptPII bool
	now           func() time.Time
}

type Option func(*Executor)

// WithCompliance records emergency, modification, rejection and quota events.
func WithCompliance(c ComplianceRecorder) Option {
	return func(e *Executor) { e.compliance = c }
}

func WithMetrics(m *metrics.AIMetrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithPromptPIIMasking sends the masked input to the model instead of the
// original.
func WithPromptPIIMasking(enabled bool) Option {
	return func(e *Executor) { e.maskPromptPII = enabled }
}

func NewExecutor(generator Generator, gate *safety.Gate, auditLogger AuditLogger, logger *logging.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.Default()
	}
	if gate == nil {
		gate = safety.NewGate(logger)
	}
	if auditLogger == nil {
		auditLogger = audit.NewLogger(nil, nil, logger)
	}
	e := &Executor{
		generator: generator,
		gate:      gate,
		audit:     auditLogger,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// execution carries the per-request values the failure paths need.
type execution struct {
	req       SkillRequest
	lang      compliance.Language
	start     time.Time
	inputHash string
	provider  string
	model     string
	tokens    audit.Tokens
	logger    *logging.Logger
}

// Quick runs a skill without context or ticket references.
func (e *Executor) Quick(ctx context.Context, skill skills.ID, input map[string]any, userID, role, lang string) Envelope {
	return e.Execute(ctx, SkillRequest{
		Skill:    skill,
		Input:    input,
		UserID:   userID,
		UserRole: role,
		Language: lang,
	})
}

// Execute runs req and always returns an envelope; no error or panic
// escapes.
func (e *Executor) Execute(ctx context.Context, req SkillRequest) (env Envelope) {
	ctx, span := tracer.Start(ctx, "ai.execute")
	defer span.End()
	span.SetAttributes(attribute.String("ai.skill", string(req.Skill)))

	x := &execution{req: req, lang: compliance.NormalizeLanguage(req.Language), start: e.now(), logger: e.logger}
	if id := httpmiddleware.RequestIDFromContext(ctx); id != "" {
		x.logger = e.logger.With("request_id", id)
	}

	if e.generator == nil || !e.generator.Configured() {
		span.SetStatus(codes.Error, "no provider")
		e.observe(x, "no_provider")
		return e.envelope(x, llm.ErrNoProviderConfigured.Error())
	}

	handler, err := skills.Lookup(req.Skill)
	if err != nil {
		span.SetStatus(codes.Error, "unknown skill")
		e.observe(x, "unknown_skill")
		return e.envelope(x, fmt.Sprintf("Unknown skill: %s", req.Skill))
	}

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, "panic")
			x.logger.Error("ai pipeline panic",
				"skill", req.Skill,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			env = e.fail(ctx, x, "panic", compliance.InternalErrorMessage(x.lang), fmt.Sprintf("panic: %v", r))
		}
	}()

	input, err := normalizeInput(req.Input)
	if err != nil {
		return e.fail(ctx, x, "invalid_input", invalidInput(x.lang, "input must be a JSON object"), err.Error())
	}
	x.inputHash = audit.HashInput(input)

	if err := handler.ValidateInput(input); err != nil {
		detail := strings.TrimPrefix(err.Error(), skills.ErrInvalidInput.Error()+": ")
		return e.fail(ctx, x, "invalid_input", invalidInput(x.lang, detail), causeInvalidInput)
	}

	pre := e.gate.RunPreChecks(ctx, safety.PreCheckInput{
		UserID:   req.UserID,
		UserRole: req.UserRole,
		Skill:    string(req.Skill),
		Language: x.lang,
		Input:    input,
	})
	if !pre.Safe {
		return e.rejectPreCheck(ctx, x, pre)
	}

	promptInput := input
	if e.maskPromptPII {
		promptInput = pre.SanitizedInput
	}
	prompt := llm.Prompt{
		System:      handler.SystemPrompt(x.lang),
		User:        handler.BuildUserPrompt(promptInput, req.Context),
		MaxTokens:   handler.MaxTokens(),
		Temperature: handler.Temperature(),
	}
	x.tokens.Input = EstimateTokens(prompt.System) + EstimateTokens(prompt.User)

	result, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		x.logger.Error("all providers failed", "skill", req.Skill, "error", err)
		return e.fail(ctx, x, "provider_error", compliance.UnavailableMessage(x.lang), err.Error())
	}
	x.provider, x.model = result.Provider, result.Model
	x.tokens.Output = EstimateTokens(result.Text)
	span.SetAttributes(attribute.String("ai.provider", result.Provider))

	output, err := handler.ParseResponse(result.Text)
	if err != nil {
		x.logger.Warn("model response did not parse", "skill", req.Skill, "provider", result.Provider, "error", err)
		output = map[string]any{"text": result.Text, "parseError": true}
	}

	post := e.gate.RunPostChecks(output, handler.RequiredKeys(), x.lang)
	if !post.Safe {
		e.metrics.ObserveSafetyEvent("rejected")
		e.recordCompliance(ctx, x, func(c context.Context) error {
			return e.compliance.LogResponseRejected(c, req.UserID, req.UserRole, string(req.Skill), x.lang, handler.RequiredKeys())
		})
		return e.fail(ctx, x, "unsafe_output", compliance.UnsafeOutputMessage(x.lang), "post-check failed: "+strings.Join(post.Warnings, ","))
	}
	if len(post.Warnings) > 0 {
		if post.Modified {
			e.metrics.ObserveSafetyEvent("modified")
		}
		for _, w := range post.Warnings {
			if w == safety.WarningPrescription {
				e.metrics.ObserveSafetyEvent("prescription")
			}
		}
		e.recordCompliance(ctx, x, func(c context.Context) error {
			return e.compliance.LogResponseModified(c, req.UserID, req.UserRole, string(req.Skill), x.lang, post.Warnings)
		})
	}

	latency := e.now().Sub(x.start).Milliseconds()
	auditID := e.audit.Log(ctx, audit.Entry{
		UserID:        req.UserID,
		UserRole:      req.UserRole,
		Skill:         string(req.Skill),
		Provider:      x.provider,
		Model:         x.model,
		Tokens:        x.tokens,
		LatencyMs:     latency,
		InputHash:     x.inputHash,
		OutputSummary: audit.SummarizeOutput(post.Sanitized),
		TicketID:      req.TicketID,
		AppointmentID: req.AppointmentID,
		Success:       true,
		Language:      string(x.lang),
	})

	e.observe(x, "success")
	e.metrics.ObserveTokens(string(req.Skill), x.tokens.Input, x.tokens.Output)
	x.logger.Info("ai skill executed",
		"skill", req.Skill,
		"provider", x.provider,
		"latency_ms", latency,
		"audit_id", auditID,
		"warnings", len(post.Warnings),
	)

	return Envelope{
		Success:    true,
		Data:       post.Sanitized,
		Disclaimer: handler.Disclaimer(x.lang),
		Warnings:   post.Warnings,
		Metadata: Metadata{
			Provider:  x.provider,
			Model:     x.model,
			Tokens:    x.tokens,
			LatencyMs: latency,
			AuditID:   auditID,
		},
	}
}

func (e *Executor) rejectPreCheck(ctx context.Context, x *execution, pre safety.PreCheckResult) Envelope {
	req := x.req
	switch pre.Code {
	case safety.CodeEmergency:
		e.metrics.ObserveSafetyEvent("emergency")
		x.logger.Warn("emergency detected, skipping generation",
			"skill", req.Skill,
			"user_id", req.UserID,
			"categories", pre.EmergencyCategories,
		)
		e.recordCompliance(ctx, x, func(c context.Context) error {
			return e.compliance.LogEmergencyDetected(c, req.UserID, req.UserRole, string(req.Skill), x.lang, pre.EmergencyCategories)
		})
		env := e.fail(ctx, x, "emergency", pre.EmergencyMessage, "emergency detected")
		env.Emergency = true
		return env
	case safety.CodeRateLimited, safety.CodeTierNotAllowed:
		e.metrics.ObserveSafetyEvent("rate_limited")
		e.recordCompliance(ctx, x, func(c context.Context) error {
			return e.compliance.LogQuotaExceeded(c, req.UserID, req.UserRole, string(req.Skill), x.lang, pre.Code)
		})
		return e.fail(ctx, x, "rate_limited", compliance.QuotaExceededMessage(x.lang), pre.Reason)
	default:
		return e.fail(ctx, x, "rejected_input", invalidInput(x.lang, pre.Reason), pre.Reason)
	}
}

// fail writes the best-effort audit entry for a failed request and builds
// the failure envelope. cause is recorded in the audit only.
func (e *Executor) fail(ctx context.Context, x *execution, outcome, message, cause string) Envelope {
	env := e.envelope(x, message)
	env.Metadata.AuditID = e.audit.Log(ctx, audit.Entry{
		UserID:        x.req.UserID,
		UserRole:      x.req.UserRole,
		Skill:         string(x.req.Skill),
		Provider:      x.provider,
		Model:         x.model,
		Tokens:        x.tokens,
		LatencyMs:     env.Metadata.LatencyMs,
		InputHash:     x.inputHash,
		TicketID:      x.req.TicketID,
		AppointmentID: x.req.AppointmentID,
		Success:       false,
		ErrorMessage:  cause,
		Language:      string(x.lang),
	})
	e.observe(x, outcome)
	return env
}

func (e *Executor) envelope(x *execution, message string) Envelope {
	return Envelope{
		Error: message,
		Metadata: Metadata{
			Provider:  x.provider,
			Model:     x.model,
			Tokens:    x.tokens,
			LatencyMs: e.now().Sub(x.start).Milliseconds(),
		},
	}
}

func (e *Executor) observe(x *execution, outcome string) {
	e.metrics.ObserveRequest(string(x.req.Skill), outcome, e.now().Sub(x.start).Seconds())
}

func (e *Executor) recordCompliance(ctx context.Context, x *execution, write func(context.Context) error) {
	if e.compliance == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), complianceTimeout)
	defer cancel()
	if err := write(ctx); err != nil {
		x.logger.Warn("compliance event write failed", "skill", x.req.Skill, "error", err)
	}
}

// EstimateTokens approximates a token count as one token per four
// characters, rounded up.
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// normalizeInput round-trips input through JSON so handlers and checks only
// ever see decoded JSON types.
func normalizeInput(input map[string]any) (map[string]any, error) {
	if input == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("ai: encode input: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("ai: decode input: %w", err)
	}
	return out, nil
}

// causeInvalidInput is the audit cause for validation failures. Validator
// messages may echo caller values and stay out of the audit row.
const causeInvalidInput = "input validation failed"

func invalidInput(lang compliance.Language, detail string) string {
	return compliance.InvalidInputMessage(lang) + ": " + detail
}
