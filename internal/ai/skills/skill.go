// Package skills defines the fixed set of AI skills: their prompts, input
// validation, output parsing and output contracts.
package skills

import (
	"errors"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

// ID identifies a skill.
type ID string

const (
	SummarizeLab      ID = "summarize_lab"
	ExtractSymptoms   ID = "extract_symptoms"
	DraftClinicalNote ID = "draft_clinical_note"
	TriageMessage     ID = "triage_message"
	GenerateCarePlan  ID = "generate_care_plan"
	InventoryForecast ID = "inventory_forecast"
	QualityCheck      ID = "quality_check"
)

var (
	// ErrUnknownSkill is returned for identifiers outside the registered set.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrInvalidInput is returned when input does not match the skill's shape.
	ErrInvalidInput = errors.New("invalid input")
)

// Handler builds prompts for one skill and interprets the model's reply.
// Implementations hold no mutable state and are shared by all requests.
type Handler interface {
	ID() ID
	SystemPrompt(lang compliance.Language) string
	BuildUserPrompt(input map[string]any, rc *RequestContext) string
	ParseResponse(raw string) (map[string]any, error)
	ValidateInput(input map[string]any) error
	Disclaimer(lang compliance.Language) string
	Temperature() float32
	MaxTokens() int32
	// RequiredKeys lists the output keys of which at least one must be present.
	RequiredKeys() []string
}

// RequestContext is optional caller-supplied enrichment. The pipeline reads
// it but never mutates or persists it.
type RequestContext struct {
	PreviousResults map[string]any  `json:"previousResults,omitempty"`
	ProtocolHints   []string        `json:"protocolHints,omitempty"`
	Instructions    string          `json:"instructions,omitempty"`
	PatientHistory  *PatientHistory `json:"patientHistory,omitempty"`
}

// PatientHistory is a read-only snapshot of the patient's record.
type PatientHistory struct {
	Profile       map[string]any   `json:"profile,omitempty"`
	Appointments  []map[string]any `json:"appointments,omitempty"`
	Prescriptions []map[string]any `json:"prescriptions,omitempty"`
	LabResults    []map[string]any `json:"labResults,omitempty"`
	Allergies     []string         `json:"allergies,omitempty"`
	Conditions    []string         `json:"conditions,omitempty"`
}

func (h *PatientHistory) empty() bool {
	return h == nil || (len(h.Profile) == 0 && len(h.Appointments) == 0 && len(h.Prescriptions) == 0 &&
		len(h.LabResults) == 0 && len(h.Allergies) == 0 && len(h.Conditions) == 0)
}
