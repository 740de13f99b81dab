package skills

import (
	"strings"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

type triageHandler struct {
	base
}

func newTriageHandler() triageHandler {
	return triageHandler{base{
		id:          TriageMessage,
		disclaimer:  compliance.DisclaimerTriage,
		temperature: 0.1,
		maxTokens:   600,
		required:    []string{"urgency", "category"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You triage incoming patient messages for a clinic's support team. You decide how urgently a human must respond and which team should handle the message.",
			compliance.LanguageFrench:  "Vous triez les messages entrants des patients pour l'équipe d'assistance d'une clinique. Vous déterminez l'urgence de la réponse humaine et l'équipe qui doit traiter le message.",
			compliance.LanguageArabic:  "أنت تفرز رسائل المرضى الواردة لفريق دعم العيادة. تحدد مدى إلحاح الرد البشري والفريق الذي يجب أن يتولى الرسالة.",
		},
		task: "Triage the patient message below.",
		schema: `{
  "urgency": "low|medium|high|urgent",
  "category": "appointment|prescription|lab_results|billing|clinical_question|technical|other",
  "routeTo": "doctor|pharmacy|lab|support",
  "reason": "one sentence",
  "suggestedReply": "short acknowledgement for the patient"
}`,
	}}
}

func (h triageHandler) ValidateInput(input map[string]any) error {
	if !nonEmptyString(input, "message") {
		return invalidInput("message is required")
	}
	return nil
}

var urgencyLevels = map[string]bool{"low": true, "medium": true, "high": true, "urgent": true}

// ParseResponse decodes the reply and drops an urgency value outside the
// known levels so the caller never routes on an invented level.
func (h triageHandler) ParseResponse(raw string) (map[string]any, error) {
	out, err := parseJSONObject(raw)
	if err != nil {
		return nil, err
	}
	if u, ok := out["urgency"].(string); ok {
		u = strings.ToLower(strings.TrimSpace(u))
		if urgencyLevels[u] {
			out["urgency"] = u
		} else {
			delete(out, "urgency")
		}
	}
	return out, nil
}
