package skills

import "github.com/wolfman30/careai-platform/internal/compliance"

type carePlanHandler struct {
	base
}

func newCarePlanHandler() carePlanHandler {
	return carePlanHandler{base{
		id:          GenerateCarePlan,
		disclaimer:  compliance.DisclaimerCarePlan,
		temperature: 0.4,
		maxTokens:   2000,
		required:    []string{"plan", "goals", "interventions"},
		roles: map[compliance.Language]string{
			compliance.LanguageEnglish: "You help doctors prepare a draft care plan. You propose measurable goals, lifestyle interventions and monitoring steps for the documented conditions, for the doctor to adapt.",
			compliance.LanguageFrench:  "Vous aidez les médecins à préparer un projet de plan de soins. Vous proposez des objectifs mesurables, des interventions sur le mode de vie et des étapes de suivi pour les pathologies documentées, à adapter par le médecin.",
			compliance.LanguageArabic:  "أنت تساعد الأطباء في إعداد مسودة خطة رعاية. تقترح أهدافًا قابلة للقياس وتدخلات في نمط الحياة وخطوات متابعة للحالات الموثقة، ليقوم الطبيب بتكييفها.",
		},
		task: "Draft a care plan for the documented conditions. Do not name new medications or change existing doses.",
		schema: `{
  "goals": [{"goal": "measurable goal", "timeframe": "e.g. 3 months"}],
  "interventions": [{"type": "lifestyle|education|monitoring|referral", "description": "what to do"}],
  "monitoring": [{"parameter": "what to track", "frequency": "how often"}],
  "plan": "narrative summary of the plan",
  "followUp": "when to see the doctor again"
}`,
	}}
}

func (h carePlanHandler) ValidateInput(input map[string]any) error {
	if _, ok := nonEmptyArray(input, "conditions"); ok {
		return nil
	}
	if nonEmptyString(input, "diagnosis") {
		return nil
	}
	return invalidInput("conditions array or diagnosis is required")
}
