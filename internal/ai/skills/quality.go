package skills

import "github.com/wolfman30/careai-platform/internal/compliance"

type qualityCheckHandler struct {
	base
}

func newQualityCheckHandler() qualityCheckHandler {
	return qualityCheckHandler{base{
		id:          QualityCheck,
		disclaimer:  compliance.DisclaimerQualityReview,
		temperature: 0.1,
		maxTokens:   1200,
		required:    []string{"score", "issues"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You review medical documents and records (prescriptions, referrals, lab requests, notes) for completeness, internal consistency and clarity before they are sent.",
			compliance.LanguageFrench:  "Vous relisez des documents et dossiers médicaux (ordonnances, lettres d'orientation, demandes d'analyses, notes) pour vérifier leur complétude, leur cohérence et leur clarté avant envoi.",
			compliance.LanguageArabic:  "أنت تراجع الوثائق والسجلات الطبية (الوصفات، رسائل الإحالة، طلبات التحاليل، الملاحظات) للتحقق من اكتمالها واتساقها ووضوحها قبل إرسالها.",
		},
		task: "Review the document below and report quality issues. Do not rewrite clinical decisions.",
		schema: `{
  "score": 0,
  "issues": [{"field": "field or section", "severity": "info|warning|error", "message": "what is wrong"}],
  "suggestions": ["improvement"],
  "complete": true
}`,
	}}
}

func (h qualityCheckHandler) ValidateInput(input map[string]any) error {
	if nonEmptyString(input, "content") {
		return nil
	}
	if rec, ok := object(input, "record"); ok && len(rec) > 0 {
		return nil
	}
	return invalidInput("content string or record object is required")
}
