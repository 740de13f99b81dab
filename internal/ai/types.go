// Package ai runs skill requests through the validation, safety, generation
// and audit pipeline and returns a single response envelope.
package ai

import (
	"github.com/wolfman30/careai-platform/internal/ai/audit"
	"github.com/wolfman30/careai-platform/internal/ai/skills"
)

// SkillRequest is one invocation of a skill on behalf of a user.
type SkillRequest struct {
	Skill         skills.ID              `json:"skill"`
	Input         map[string]any         `json:"input"`
	Context       *skills.RequestContext `json:"context,omitempty"`
	UserID        string                 `json:"userId"`
	UserRole      string                 `json:"userRole"`
	Language      string                 `json:"language,omitempty"`
	TicketID      string                 `json:"ticketId,omitempty"`
	AppointmentID string                 `json:"appointmentId,omitempty"`
}

// Envelope is the only value returned to callers.
type Envelope struct {
	Success    bool           `json:"success"`
	Data       map[string]any `json:"data,omitempty"`
	Error      string         `json:"error,omitempty"`
	Disclaimer string         `json:"disclaimer,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Emergency  bool           `json:"emergency,omitempty"`
	Metadata   Metadata       `json:"metadata"`
}

type Metadata struct {
	Provider  string       `json:"provider,omitempty"`
	Model     string       `json:"model,omitempty"`
	Tokens    audit.Tokens `json:"tokens"`
	LatencyMs int64        `json:"latencyMs"`
	Cached    bool         `json:"cached"`
	AuditID   string       `json:"auditId,omitempty"`
}
