package compliance

// DisclaimerKind selects the caveat attached to a skill's output.
type DisclaimerKind string

const (
	DisclaimerLabSummary    DisclaimerKind = "lab_summary"
	DisclaimerSymptoms      DisclaimerKind = "symptoms"
	DisclaimerClinicalNote  DisclaimerKind = "clinical_note"
	DisclaimerTriage        DisclaimerKind = "triage"
	DisclaimerCarePlan      DisclaimerKind = "care_plan"
	DisclaimerInventory     DisclaimerKind = "inventory"
	DisclaimerQualityReview DisclaimerKind = "quality_review"
)

var disclaimers = map[DisclaimerKind]map[Language]string{
	DisclaimerLabSummary: {
		LanguageEnglish: "This summary is generated automatically to help you read your results. It is not a diagnosis. Please review your results with your doctor.",
		LanguageFrench:  "Ce résumé est généré automatiquement pour vous aider à lire vos résultats. Il ne constitue pas un diagnostic. Veuillez revoir vos résultats avec votre médecin.",
		LanguageArabic:  "تم إنشاء هذا الملخص تلقائيًا لمساعدتك على قراءة نتائجك. وهو ليس تشخيصًا. يرجى مراجعة نتائجك مع طبيبك.",
	},
	DisclaimerSymptoms: {
		LanguageEnglish: "The symptoms listed were extracted automatically and may be incomplete. This is not a diagnosis. Consult a licensed doctor.",
		LanguageFrench:  "Les symptômes listés ont été extraits automatiquement et peuvent être incomplets. Ceci n'est pas un diagnostic. Consultez un médecin.",
		LanguageArabic:  "تم استخراج الأعراض المذكورة تلقائيًا وقد تكون غير مكتملة. هذا ليس تشخيصًا. استشر طبيبًا مرخصًا.",
	},
	DisclaimerClinicalNote: {
		LanguageEnglish: "Draft generated automatically. The treating clinician must review, correct and sign this note before it enters the medical record.",
		LanguageFrench:  "Brouillon généré automatiquement. Le clinicien traitant doit relire, corriger et signer cette note avant son intégration au dossier médical.",
		LanguageArabic:  "مسودة تم إنشاؤها تلقائيًا. يجب على الطبيب المعالج مراجعة هذه الملاحظة وتصحيحها وتوقيعها قبل إدراجها في الملف الطبي.",
	},
	DisclaimerTriage: {
		LanguageEnglish: "Automatic triage is an aid for staff prioritisation only. If you feel your situation is urgent, contact emergency services.",
		LanguageFrench:  "Le tri automatique aide uniquement le personnel à prioriser les demandes. Si votre situation vous semble urgente, contactez les services d'urgence.",
		LanguageArabic:  "الفرز التلقائي هو أداة مساعدة للطاقم لتحديد الأولويات فقط. إذا شعرت أن حالتك طارئة، اتصل بخدمات الطوارئ.",
	},
	DisclaimerCarePlan: {
		LanguageEnglish: "This care plan is a suggestion for discussion with your healthcare team. Do not start, stop or change any treatment without your doctor's advice.",
		LanguageFrench:  "Ce plan de soins est une suggestion à discuter avec votre équipe soignante. Ne commencez, n'arrêtez ni ne modifiez aucun traitement sans l'avis de votre médecin.",
		LanguageArabic:  "خطة الرعاية هذه اقتراح للنقاش مع فريقك الطبي. لا تبدأ أي علاج أو توقفه أو تغيره دون استشارة طبيبك.",
	},
	DisclaimerInventory: {
		LanguageEnglish: "Forecasts are estimates based on the data provided. Verify stock levels and regulatory requirements before ordering.",
		LanguageFrench:  "Les prévisions sont des estimations fondées sur les données fournies. Vérifiez les niveaux de stock et les exigences réglementaires avant de commander.",
		LanguageArabic:  "التوقعات تقديرات مبنية على البيانات المقدمة. تحقق من مستويات المخزون والمتطلبات التنظيمية قبل الطلب.",
	},
	DisclaimerQualityReview: {
		LanguageEnglish: "Automated quality review may miss issues or flag false positives. A qualified reviewer remains responsible for the final decision.",
		LanguageFrench:  "La revue qualité automatisée peut omettre des problèmes ou signaler de faux positifs. Un relecteur qualifié reste responsable de la décision finale.",
		LanguageArabic:  "قد تغفل مراجعة الجودة الآلية بعض المشكلات أو تشير إلى أخطاء غير حقيقية. يظل المراجع المؤهل مسؤولاً عن القرار النهائي.",
	},
}

// Disclaimer returns the localized caveat for kind. Unknown kinds fall back to
// the generic medical disclaimer so a successful response is never bare.
func Disclaimer(kind DisclaimerKind, lang Language) string {
	table, ok := disclaimers[kind]
	if !ok {
		return localized(genericDisclaimer, lang)
	}
	return localized(table, lang)
}

var genericDisclaimer = map[Language]string{
	LanguageEnglish: "This is an automated assistant and not a substitute for professional medical advice.",
	LanguageFrench:  "Ceci est un assistant automatisé et ne remplace pas un avis médical professionnel.",
	LanguageArabic:  "هذا مساعد آلي ولا يغني عن الاستشارة الطبية المتخصصة.",
}
