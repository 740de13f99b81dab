package safety

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Redacted replaces every masked value.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"password":    true,
	"token":       true,
	"secret":      true,
	"ssn":         true,
	"card_number": true,
}

// Applied in order; emails first so their digits are not mistaken for phones.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}\b`),
	regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`),
}

// MaskText redacts emails, card numbers, dates and phone numbers in s.
func MaskText(s string) string {
	for _, re := range piiPatterns {
		s = re.ReplaceAllString(s, Redacted)
	}
	return s
}

// MaskPII returns a deep copy of v with PII redacted. Fields named after
// credentials are replaced whole. The input is never modified.
func MaskPII(v any) any {
	switch t := v.(type) {
	case string:
		return MaskText(t)
	case float64:
		return maskNumber(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if sensitiveKeys[strings.ToLower(k)] {
				out[k] = Redacted
				continue
			}
			out[k] = MaskPII(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = MaskPII(child)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = MaskText(s)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = MaskPII(child)
		}
		return out
	default:
		return v
	}
}

// maskNumber catches phone and card numbers that arrive as JSON numbers.
func maskNumber(f float64) any {
	if f != math.Trunc(f) || math.Abs(f) < 1e8 {
		return f
	}
	s := strconv.FormatFloat(f, 'f', 0, 64)
	if MaskText(s) != s {
		return Redacted
	}
	return f
}

// MaskInput is MaskPII specialised to a request input.
func MaskInput(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	return MaskPII(input).(map[string]any)
}
