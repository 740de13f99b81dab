package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		raw  string
		want Language
	}{
		{"ar", LanguageArabic},
		{"FR", LanguageFrench},
		{"fr-DZ", LanguageFrench},
		{"ar_MA", LanguageArabic},
		{"en", LanguageEnglish},
		{"", LanguageEnglish},
		{"de", LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguage(tt.raw))
		})
	}
}

func TestDisclaimerCoversEveryKindAndLanguage(t *testing.T) {
	for kind := range disclaimers {
		for _, lang := range Languages {
			assert.NotEmpty(t, Disclaimer(kind, lang), "kind=%s lang=%s", kind, lang)
		}
	}
}

func TestDisclaimerUnknownFallsBack(t *testing.T) {
	assert.Equal(t, genericDisclaimer[LanguageFrench], Disclaimer("nope", LanguageFrench))
	assert.Equal(t, disclaimers[DisclaimerTriage][LanguageEnglish], Disclaimer(DisclaimerTriage, Language("de")))
}

func TestLocalizedMessages(t *testing.T) {
	for _, lang := range Languages {
		assert.NotEmpty(t, EmergencyMessage(lang))
		assert.NotEmpty(t, UnavailableMessage(lang))
		assert.NotEmpty(t, UnsafeOutputMessage(lang))
		assert.NotEmpty(t, InternalErrorMessage(lang))
		marker := SafetyWarningMarker(lang)
		assert.True(t, marker[0] == '[' && marker[len(marker)-1] == ']', "marker must be bracketed: %s", marker)
	}
	assert.Equal(t, EmergencyMessage(LanguageEnglish), EmergencyMessage(Language("xx")))
}
