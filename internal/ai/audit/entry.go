// Package audit records one redacted, append-only entry per skill execution
// and accumulates monthly usage per user.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/wolfman30/careai-platform/internal/ai/safety"
)

// Tokens are estimates, not provider-reported counts.
type Tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Entry is never updated after it is written and never holds raw input.
type Entry struct {
	UserID        string         `json:"userId"`
	UserRole      string         `json:"userRole"`
	Skill         string         `json:"skill"`
	Provider      string         `json:"provider,omitempty"`
	Model         string         `json:"model,omitempty"`
	Tokens        Tokens         `json:"tokens"`
	LatencyMs     int64          `json:"latencyMs"`
	InputHash     string         `json:"inputHash"`
	OutputSummary map[string]any `json:"outputSummary,omitempty"`
	TicketID      string         `json:"ticketId,omitempty"`
	AppointmentID string         `json:"appointmentId,omitempty"`
	Success       bool           `json:"success"`
	ErrorMessage  string         `json:"errorMessage,omitempty"`
	Language      string         `json:"language"`
}

// MaskedRepresentation is the PII-masked JSON form of input that HashInput
// digests.
func MaskedRepresentation(input map[string]any) string {
	data, err := json.Marshal(safety.MaskInput(input))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// HashInput returns a short correlation token for input. It is computed
// over the masked form and is not meant to resist guessing.
func HashInput(input map[string]any) string {
	sum := sha256.Sum256([]byte(MaskedRepresentation(input)))
	return hex.EncodeToString(sum[:])[:16]
}

// SummarizeOutput describes the shape of output: key names, value types and
// container sizes. Values are never included.
func SummarizeOutput(output any) map[string]any {
	switch t := output.(type) {
	case map[string]any:
		if t == nil {
			return map[string]any{"type": "null"}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]string, len(t))
		for _, k := range keys {
			fields[k] = describe(t[k])
		}
		return map[string]any{"type": "object", "keys": keys, "fields": fields}
	case []any:
		return map[string]any{"type": "array", "length": len(t)}
	default:
		return map[string]any{"type": describe(t)}
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		return "number"
	case map[string]any:
		return fmt.Sprintf("object{%d}", len(t))
	case []any:
		return fmt.Sprintf("array[%d]", len(t))
	default:
		return fmt.Sprintf("%T", v)
	}
}
