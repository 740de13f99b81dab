// Package safety implements the checks that run before and after a model
// call: emergency detection, input limits, quota, PII masking and output
// sanitization.
package safety

import (
	"context"

	"github.com/wolfman30/careai-platform/internal/compliance"
	"github.com/wolfman30/careai-platform/pkg/logging"
)

// Pre-check rejection codes.
const (
	CodeEmergency      = "emergency_detected"
	CodeInvalidInput   = "invalid_structure"
	CodeRateLimited    = "rate_limited"
	CodeTierNotAllowed = "tier_not_allowed"
)

// Post-check warnings.
const (
	WarningDangerousAdvice    = "dangerous_advice_flagged"
	WarningDiagnosticSoftened = "diagnostic_language_softened"
	WarningPrescription       = "prescription_content_detected"
	WarningStructureInvalid   = "structure_invalid"
)

// Gate runs the pre- and post-checks. It holds no per-request state.
type Gate struct {
	limiter RateLimiter
	tiers   TierPolicy
	logger  *logging.Logger
}

type Option func(*Gate)

// WithRateLimiter replaces the permissive default limiter.
func WithRateLimiter(l RateLimiter) Option {
	return func(g *Gate) {
		if l != nil {
			g.limiter = l
		}
	}
}

// WithTierPolicy replaces the permissive default tier policy.
func WithTierPolicy(p TierPolicy) Option {
	return func(g *Gate) {
		if p != nil {
			g.tiers = p
		}
	}
}

func NewGate(logger *logging.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Gate{
		limiter: AllowAll{},
		tiers:   AllowAll{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type PreCheckInput struct {
	UserID   string
	UserRole string
	Skill    string
	Language compliance.Language
	Input    map[string]any
}

type PreCheckResult struct {
	Safe                bool
	Code                string
	Reason              string
	EmergencyDetected   bool
	EmergencyMessage    string
	EmergencyCategories []string
	// SanitizedInput is the PII-masked copy of the input, for audit only.
	SanitizedInput map[string]any
}

// RunPreChecks applies the emergency scan, structure limits, quota checks
// and PII masking in that order; the first failure is terminal.
func (g *Gate) RunPreChecks(ctx context.Context, in PreCheckInput) PreCheckResult {
	if categories := DetectEmergency(in.Input); len(categories) > 0 {
		return PreCheckResult{
			Code:                CodeEmergency,
			Reason:              "emergency keywords detected",
			EmergencyDetected:   true,
			EmergencyMessage:    compliance.EmergencyMessage(in.Language),
			EmergencyCategories: categories,
		}
	}

	if err := ValidateStructure(in.Input); err != nil {
		return PreCheckResult{Code: CodeInvalidInput, Reason: err.Error()}
	}

	allowed, err := g.limiter.Allow(ctx, in.UserID, in.Skill)
	if err != nil {
		g.logger.Warn("rate limiter unavailable, allowing request", "user_id", in.UserID, "skill", in.Skill, "error", err)
	} else if !allowed {
		return PreCheckResult{Code: CodeRateLimited, Reason: "rate limit exceeded"}
	}

	permitted, err := g.tiers.Permits(ctx, in.UserID, in.UserRole, in.Skill)
	if err != nil {
		g.logger.Warn("tier policy unavailable, allowing request", "user_id", in.UserID, "skill", in.Skill, "error", err)
	} else if !permitted {
		return PreCheckResult{Code: CodeTierNotAllowed, Reason: "skill not included in subscription tier"}
	}

	return PreCheckResult{Safe: true, SanitizedInput: MaskInput(in.Input)}
}
