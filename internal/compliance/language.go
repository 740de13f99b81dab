package compliance

import "strings"

// Language is one of the locales user-facing strings are produced in.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
)

// Languages lists every supported locale.
var Languages = []Language{LanguageArabic, LanguageFrench, LanguageEnglish}

// NormalizeLanguage maps a raw language tag to a supported locale, falling
// back to English. Region suffixes ("fr-DZ", "ar_MA") are accepted.
func NormalizeLanguage(raw string) Language {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	switch Language(tag) {
	case LanguageArabic, LanguageFrench, LanguageEnglish:
		return Language(tag)
	default:
		return LanguageEnglish
	}
}

// localized picks the entry for lang, falling back to English.
func localized(table map[Language]string, lang Language) string {
	if s, ok := table[lang]; ok && s != "" {
		return s
	}
	return table[LanguageEnglish]
}
