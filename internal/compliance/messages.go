package compliance

var emergencyMessages = map[Language]string{
	LanguageEnglish: "This sounds like a medical emergency. Please call your local emergency number (112 / 14) or go to the nearest emergency department immediately. If you are thinking about harming yourself, reach out to someone you trust right now.",
	LanguageFrench:  "Cela ressemble à une urgence médicale. Appelez immédiatement le numéro d'urgence local (112 / 14) ou rendez-vous aux urgences les plus proches. Si vous pensez à vous faire du mal, parlez tout de suite à une personne de confiance.",
	LanguageArabic:  "يبدو أن هذه حالة طبية طارئة. يرجى الاتصال فورًا برقم الطوارئ المحلي (112 / 14) أو التوجه إلى أقرب قسم طوارئ. إذا كنت تفكر في إيذاء نفسك، تواصل الآن مع شخص تثق به.",
}

// EmergencyMessage is the human-actionable message returned instead of any
// generated content when an emergency is detected.
func EmergencyMessage(lang Language) string {
	return localized(emergencyMessages, lang)
}

var safetyWarningMarkers = map[Language]string{
	LanguageEnglish: "[SAFETY WARNING: do not act on this without consulting your doctor]",
	LanguageFrench:  "[AVERTISSEMENT DE SÉCURITÉ : ne suivez pas ce conseil sans consulter votre médecin]",
	LanguageArabic:  "[تحذير سلامة: لا تتصرف بناءً على هذا دون استشارة طبيبك]",
}

// SafetyWarningMarker is the bracketed prefix placed before dangerous advice.
func SafetyWarningMarker(lang Language) string {
	return localized(safetyWarningMarkers, lang)
}

var unavailableMessages = map[Language]string{
	LanguageEnglish: "The AI assistant is temporarily unavailable. Please try again later.",
	LanguageFrench:  "L'assistant IA est temporairement indisponible. Veuillez réessayer plus tard.",
	LanguageArabic:  "المساعد الذكي غير متاح مؤقتًا. يرجى المحاولة لاحقًا.",
}

// UnavailableMessage is the generic message for backend failures.
func UnavailableMessage(lang Language) string {
	return localized(unavailableMessages, lang)
}

var unsafeOutputMessages = map[Language]string{
	LanguageEnglish: "The AI response did not pass safety validation. Please rephrase your request or contact your care team.",
	LanguageFrench:  "La réponse de l'IA n'a pas passé la validation de sécurité. Reformulez votre demande ou contactez votre équipe soignante.",
	LanguageArabic:  "لم تجتز استجابة الذكاء الاصطناعي فحص السلامة. يرجى إعادة صياغة طلبك أو التواصل مع فريق الرعاية.",
}

// UnsafeOutputMessage is returned when post-checks reject a model response.
func UnsafeOutputMessage(lang Language) string {
	return localized(unsafeOutputMessages, lang)
}

var internalErrorMessages = map[Language]string{
	LanguageEnglish: "An unexpected error occurred while processing your request.",
	LanguageFrench:  "Une erreur inattendue s'est produite lors du traitement de votre demande.",
	LanguageArabic:  "حدث خطأ غير متوقع أثناء معالجة طلبك.",
}

// InternalErrorMessage is the generic envelope error for unexpected failures.
func InternalErrorMessage(lang Language) string {
	return localized(internalErrorMessages, lang)
}

var quotaExceededMessages = map[Language]string{
	LanguageEnglish: "You have reached the AI assistant usage limit for now. Please try again later.",
	LanguageFrench:  "Vous avez atteint la limite d'utilisation de l'assistant IA pour le moment. Veuillez réessayer plus tard.",
	LanguageArabic:  "لقد بلغت حد استخدام المساعد الذكي حاليًا. يرجى المحاولة لاحقًا.",
}

// QuotaExceededMessage is returned when a rate limit or tier policy refuses a request.
func QuotaExceededMessage(lang Language) string {
	return localized(quotaExceededMessages, lang)
}

var invalidInputMessages = map[Language]string{
	LanguageEnglish: "The request input was rejected",
	LanguageFrench:  "Les données de la demande ont été refusées",
	LanguageArabic:  "تم رفض بيانات الطلب",
}

// InvalidInputMessage prefixes the validation detail returned to callers.
func InvalidInputMessage(lang Language) string {
	return localized(invalidInputMessages, lang)
}
