package skills

import (
	"strings"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

type labSummaryHandler struct {
	base
}

func newLabSummaryHandler() labSummaryHandler {
	return labSummaryHandler{base{
		id:          SummarizeLab,
		disclaimer:  compliance.DisclaimerLabSummary,
		temperature: 0.2,
		maxTokens:   1500,
		required:    []string{"summary", "highlights"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You are a medical assistant who explains laboratory results to patients in plain language. You compare each value with its reference range and point out what deserves a conversation with the doctor.",
			compliance.LanguageFrench:  "Vous êtes un assistant médical qui explique les résultats d'analyses de laboratoire aux patients dans un langage simple. Vous comparez chaque valeur à son intervalle de référence et signalez ce qui mérite d'être discuté avec le médecin.",
			compliance.LanguageArabic:  "أنت مساعد طبي يشرح نتائج التحاليل المخبرية للمرضى بلغة بسيطة. تقارن كل قيمة بمجالها المرجعي وتشير إلى ما يستحق النقاش مع الطبيب.",
		},
		task: "Summarize the laboratory results below for the patient. Classify every test as low, normal, high or critical against its reference range.",
		schema: `{
  "summary": "short plain-language overview",
  "highlights": [
    {"test": "test name", "value": "value with unit", "referenceRange": "range", "status": "low|normal|high|critical", "explanation": "what it may mean"}
  ],
  "questionsForDoctor": ["question"],
  "followUpSuggested": true
}`,
	}}
}

func (h labSummaryHandler) ValidateInput(input map[string]any) error {
	lab, ok := object(input, "labResult")
	if !ok {
		return invalidInput("labResult object is required")
	}
	results, ok := nonEmptyArray(lab, "results")
	if !ok {
		return invalidInput("labResult.results must be a non-empty array")
	}
	for i, r := range results {
		row, ok := r.(map[string]any)
		if !ok || (!nonEmptyString(row, "test_name") && !nonEmptyString(row, "name")) {
			return invalidInput("labResult.results[%d].test_name is required", i)
		}
		if _, ok := row["value"]; !ok {
			return invalidInput("labResult.results[%d].value is required", i)
		}
	}
	return nil
}

var labStatuses = map[string]string{
	"low":      "low",
	"normal":   "normal",
	"high":     "high",
	"critical": "critical",
	"elevated": "high",
	"abnormal": "high",
	"bas":      "low",
	"élevé":    "high",
	"critique": "critical",
}

// ParseResponse decodes the reply and canonicalizes highlight statuses.
func (h labSummaryHandler) ParseResponse(raw string) (map[string]any, error) {
	out, err := parseJSONObject(raw)
	if err != nil {
		return nil, err
	}
	highlights, _ := out["highlights"].([]any)
	for _, item := range highlights {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		status, _ := row["status"].(string)
		if canonical, ok := labStatuses[strings.ToLower(strings.TrimSpace(status))]; ok {
			row["status"] = canonical
		}
	}
	return out, nil
}
