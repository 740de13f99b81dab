package skills

import (
	"strings"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

type clinicalNoteHandler struct {
	base
}

func newClinicalNoteHandler() clinicalNoteHandler {
	return clinicalNoteHandler{base{
		id:          DraftClinicalNote,
		disclaimer:  compliance.DisclaimerClinicalNote,
		temperature: 0.3,
		maxTokens:   2000,
		required:    []string{"note", "soap"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You are a medical scribe. You turn a consultation transcript or a doctor's rough notes into a structured SOAP draft, keeping only facts present in the source.",
			compliance.LanguageFrench:  "Vous êtes un secrétaire médical. Vous transformez la transcription d'une consultation ou les notes brutes d'un médecin en un brouillon SOAP structuré, en ne gardant que les faits présents dans la source.",
			compliance.LanguageArabic:  "أنت كاتب طبي. تحوّل نص الاستشارة أو ملاحظات الطبيب الأولية إلى مسودة SOAP منظمة، مع الاحتفاظ فقط بالوقائع الموجودة في المصدر.",
		},
		task: "Draft a clinical note from the consultation material below. Leave a section empty rather than inventing content.",
		schema: `{
  "soap": {
    "subjective": "patient-reported history",
    "objective": "exam findings and measurements",
    "assessment": "clinician's impression as documented in the source",
    "plan": "plan as documented in the source"
  },
  "note": "the same content as a single narrative paragraph",
  "missingInformation": ["item the clinician should complete"]
}`,
	}}
}

var noteTypes = map[string]bool{"soap": true, "progress": true, "consultation": true, "discharge": true}

func (h clinicalNoteHandler) ValidateInput(input map[string]any) error {
	if !nonEmptyString(input, "transcript") && !nonEmptyString(input, "notes") {
		return invalidInput("transcript or notes is required")
	}
	if raw, ok := input["noteType"]; ok {
		noteType, _ := raw.(string)
		if !noteTypes[strings.ToLower(noteType)] {
			return invalidInput("noteType must be one of soap, progress, consultation, discharge")
		}
	}
	return nil
}
