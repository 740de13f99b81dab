package safety

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

type PostCheckResult struct {
	Safe      bool
	Sanitized map[string]any
	Warnings  []string
	Modified  bool
}

// RunPostChecks sanitizes every string leaf of output and validates it
// against requiredKeys (at least one must be present). output is not
// modified. The result depends only on the arguments.
func (g *Gate) RunPostChecks(output map[string]any, requiredKeys []string, lang compliance.Language) PostCheckResult {
	return RunPostChecks(output, requiredKeys, lang)
}

func RunPostChecks(output map[string]any, requiredKeys []string, lang compliance.Language) PostCheckResult {
	s := &sanitizer{marker: compliance.SafetyWarningMarker(lang)}
	sanitized, _ := s.value(output).(map[string]any)

	var warnings []string
	if s.dangerous {
		warnings = append(warnings, WarningDangerousAdvice)
	}
	if s.softened {
		warnings = append(warnings, WarningDiagnosticSoftened)
	}
	if s.prescription {
		warnings = append(warnings, WarningPrescription)
	}

	if !hasAnyKey(output, requiredKeys) {
		return PostCheckResult{
			Warnings: append(warnings, WarningStructureInvalid),
			Modified: s.dangerous || s.softened,
		}
	}
	return PostCheckResult{
		Safe:      true,
		Sanitized: sanitized,
		Warnings:  warnings,
		Modified:  s.dangerous || s.softened,
	}
}

func hasAnyKey(output map[string]any, keys []string) bool {
	if len(keys) == 0 {
		return output != nil
	}
	for _, k := range keys {
		if v, ok := output[k]; ok && v != nil {
			return true
		}
	}
	return false
}

type sanitizer struct {
	marker       string
	dangerous    bool
	softened     bool
	prescription bool
}

func (s *sanitizer) value(v any) any {
	switch t := v.(type) {
	case string:
		return s.text(t)
	case map[string]any:
		if t == nil {
			return nil
		}
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = s.value(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = s.value(child)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, str := range t {
			out[i] = s.text(str)
		}
		return out
	default:
		return v
	}
}

func (s *sanitizer) text(in string) string {
	out := in
	for _, lang := range ruleOrder {
		rules := postCheckRules[lang]
		for _, re := range rules.dangerous {
			var flagged bool
			out, flagged = flagSpans(out, re, s.marker)
			s.dangerous = s.dangerous || flagged
		}
		for _, rule := range rules.softening {
			var changed bool
			out, changed = soften(out, rule)
			s.softened = s.softened || changed
		}
		for _, re := range rules.prescription {
			if re.MatchString(out) {
				s.prescription = true
			}
		}
	}
	return out
}

// flagSpans prefixes each match with marker, leaving already-marked spans
// alone so sanitized text passes through unchanged.
func flagSpans(text string, re *regexp.Regexp, marker string) (string, bool) {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, false
	}
	prefix := marker + " "
	var sb strings.Builder
	last := 0
	flagged := false
	for _, m := range matches {
		sb.WriteString(text[last:m[0]])
		if !strings.HasSuffix(text[:m[0]], prefix) {
			sb.WriteString(prefix)
			flagged = true
		}
		sb.WriteString(text[m[0]:m[1]])
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String(), flagged
}

// soften applies rule and keeps a leading capital when the match had one.
func soften(text string, rule rewriteRule) (string, bool) {
	changed := false
	out := rule.re.ReplaceAllStringFunc(text, func(match string) string {
		if rule.skip != nil && rule.skip.MatchString(match) {
			return match
		}
		changed = true
		replaced := rule.re.ReplaceAllString(match, rule.replacement)
		first, _ := utf8.DecodeRuneInString(match)
		if unicode.IsUpper(first) {
			return upperFirst(replaced)
		}
		return replaced
	})
	return out, changed
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
