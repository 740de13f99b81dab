package skills

import "github.com/wolfman30/careai-platform/internal/compliance"

type symptomExtractionHandler struct {
	base
}

func newSymptomExtractionHandler() symptomExtractionHandler {
	return symptomExtractionHandler{base{
		id:          ExtractSymptoms,
		disclaimer:  compliance.DisclaimerSymptoms,
		temperature: 0.1,
		maxTokens:   1000,
		required:    []string{"symptoms", "suggestedSpecialty"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You are a clinical intake assistant. You read what a patient wrote and extract the symptoms they describe, with duration and severity when stated, so the right specialist can be suggested.",
			compliance.LanguageFrench:  "Vous êtes un assistant d'accueil clinique. Vous lisez ce qu'un patient a écrit et extrayez les symptômes décrits, avec leur durée et leur intensité lorsqu'elles sont précisées, afin de suggérer le bon spécialiste.",
			compliance.LanguageArabic:  "أنت مساعد استقبال سريري. تقرأ ما كتبه المريض وتستخرج الأعراض التي يصفها، مع مدتها وشدتها عند ذكرها، لاقتراح التخصص المناسب.",
		},
		task: "Extract the symptoms described by the patient. Do not infer symptoms that are not mentioned.",
		schema: `{
  "symptoms": [
    {"name": "symptom", "duration": "as stated or null", "severity": "mild|moderate|severe|unknown", "bodyPart": "if stated"}
  ],
  "suggestedSpecialty": "medical specialty to consult",
  "redFlags": ["symptom that warrants prompt attention"],
  "clarifyingQuestions": ["question"]
}`,
	}}
}

func (h symptomExtractionHandler) ValidateInput(input map[string]any) error {
	if nonEmptyString(input, "freeText") {
		return nil
	}
	if _, ok := nonEmptyArray(input, "messages"); ok {
		return nil
	}
	return invalidInput("freeText or messages is required")
}
