package safety

import (
	"regexp"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

// rewriteRule replaces every match of re with replacement ($n expansions
// allowed). Matches that also match skip are left as written.
type rewriteRule struct {
	re          *regexp.Regexp
	replacement string
	skip        *regexp.Regexp
}

// ruleSet is the post-check rule table for one language.
type ruleSet struct {
	// dangerous spans are kept and prefixed with the safety marker.
	dangerous []*regexp.Regexp
	// softening rewrites definitive diagnostic phrasing.
	softening []rewriteRule
	// prescription matches only raise a warning.
	prescription []*regexp.Regexp
}

// ruleOrder fixes the order tables are applied in; model output is not
// always in the requested language, so every table runs.
var ruleOrder = []compliance.Language{compliance.LanguageEnglish, compliance.LanguageFrench, compliance.LanguageArabic}

var postCheckRules = map[compliance.Language]ruleSet{
	compliance.LanguageEnglish: {
		dangerous: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:stop|quit|discontinue) taking (?:your|the|all|any) (?:medications?|medicines?|pills|tablets|treatment)`),
			regexp.MustCompile(`(?i)\bstop (?:your|the) (?:medications?|treatment|insulin|antibiotics)`),
			regexp.MustCompile(`(?i)\bno need to (?:see|consult|visit|call) (?:a|your|the) (?:doctor|physician|gp|specialist)`),
			regexp.MustCompile(`(?i)\b(?:you )?(?:don't|do not) need (?:to see )?(?:a|your) doctor`),
			regexp.MustCompile(`(?i)\b(?:double|triple|increase) (?:your|the) (?:dose|dosage)`),
			regexp.MustCompile(`(?i)\b(?:skip|ignore) (?:your|the) (?:medications?|doses?|treatment)`),
		},
		softening: []rewriteRule{
			{regexp.MustCompile(`(?i)\byou (?:definitely |certainly |clearly )?have ((?:[a-z0-9'\-]+ ){0,3}?(?:disease|disorder|syndrome|cancer|diabetes|infection|hypertension|anemia|anaemia|tumou?r))\b`), "you may have $1", regexp.MustCompile(`(?i)^you (?:definitely |certainly |clearly )?have (?:no|not|never)\b`)},
			{regexp.MustCompile(`(?i)\byour diagnosis is\b`), "possible considerations include", nil},
			{regexp.MustCompile(`(?i)\byou are diagnosed with\b`), "possible considerations include", nil},
			{regexp.MustCompile(`(?i)\byou are suffering from\b`), "you may be experiencing", nil},
			{regexp.MustCompile(`(?i)\b(this|it) (?:definitely|certainly|clearly) (?:is|indicates)\b`), "$1 may indicate", nil},
		},
		prescription: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|ml|iu|units?)\b\s*(?:once|twice|three times|daily|per day|a day|every|at bedtime)`),
			regexp.MustCompile(`(?i)\b(?:take|start on|prescribe[ds]?)\s+\d+(?:\.\d+)?\s?(?:mg|mcg|ml|tablets?|capsules?)`),
		},
	},
	compliance.LanguageFrench: {
		dangerous: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:arrêtez|arrêter|cessez|cesser) (?:de prendre )?(?:vos|votre|le|les|ce) (?:médicaments?|traitements?)`),
			regexp.MustCompile(`(?i)\bpas besoin de (?:voir|consulter) (?:un|le|votre) (?:médecin|docteur|spécialiste)`),
			regexp.MustCompile(`(?i)\b(?:doublez|augmentez) (?:la|votre) (?:dose|posologie)`),
		},
		softening: []rewriteRule{
			{regexp.MustCompile(`(?i)\bvous avez ((?:une? |la |le |du |des )?(?:[\p{L}'\-]+ ){0,3}?(?:maladie|diabète|cancer|infection|syndrome|hypertension|anémie|tumeur))`), "vous pourriez avoir $1", regexp.MustCompile(`(?i)^vous avez (?:aucune?|pas|jamais)\b`)},
			{regexp.MustCompile(`(?i)\bvotre diagnostic est\b`), "les considérations possibles incluent", nil},
			{regexp.MustCompile(`(?i)\bvous souffrez (de |d')`), "vous pourriez souffrir $1", nil},
		},
		prescription: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s?(?:mg|ml|ui)\b\s*(?:par jour|fois par jour|matin et soir|toutes les)`),
			regexp.MustCompile(`(?i)\bprenez\s+\d+`),
		},
	},
	compliance.LanguageArabic: {
		dangerous: []*regexp.Regexp{
			regexp.MustCompile(`توقف عن تناول (?:الدواء|أدويتك|دوائك|العلاج)`),
			regexp.MustCompile(`لا داعي (?:لزيارة|لمراجعة|لاستشارة) الطبيب`),
			regexp.MustCompile(`ضاعف الجرعة`),
		},
		softening: []rewriteRule{
			{regexp.MustCompile(`أنت مصاب ب`), "قد تكون مصابًا ب", nil},
			{regexp.MustCompile(`تشخيصك هو`), "من الاحتمالات الممكنة", nil},
			{regexp.MustCompile(`أنت تعاني من`), "قد تعاني من", nil},
		},
		prescription: []*regexp.Regexp{
			regexp.MustCompile(`\d+\s?(?:ملغ|مغ|مل)\s*(?:يوميًا|يوميا|مرتين|مرات)`),
			regexp.MustCompile(`وصفة طبية`),
		},
	},
}
