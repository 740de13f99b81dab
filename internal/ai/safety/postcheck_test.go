package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

func TestRunPostChecksDangerousAdvice(t *testing.T) {
	output := map[string]any{
		"plan":  "stop taking your medication immediately",
		"goals": []any{"walk daily"},
	}
	res := RunPostChecks(output, []string{"plan", "goals", "interventions"}, compliance.LanguageEnglish)

	require.True(t, res.Safe)
	assert.True(t, res.Modified)
	assert.Contains(t, res.Warnings, WarningDangerousAdvice)

	marker := compliance.SafetyWarningMarker(compliance.LanguageEnglish)
	assert.Equal(t, marker+" stop taking your medication immediately", res.Sanitized["plan"])
	assert.Equal(t, "stop taking your medication immediately", output["plan"], "input untouched")
}

func TestRunPostChecksMarkerFollowsLanguage(t *testing.T) {
	output := map[string]any{"plan": "Stop taking your medication."}
	res := RunPostChecks(output, []string{"plan"}, compliance.LanguageFrench)
	assert.True(t, strings.HasPrefix(res.Sanitized["plan"].(string), compliance.SafetyWarningMarker(compliance.LanguageFrench)))
}

func TestRunPostChecksAlreadyFlaggedIsStable(t *testing.T) {
	output := map[string]any{"plan": "stop taking your medication"}
	first := RunPostChecks(output, []string{"plan"}, compliance.LanguageEnglish)
	second := RunPostChecks(first.Sanitized, []string{"plan"}, compliance.LanguageEnglish)

	assert.Equal(t, first.Sanitized, second.Sanitized)
	assert.False(t, second.Modified)
}

func TestSofteningRules(t *testing.T) {
	tests := []struct {
		name string
		lang compliance.Language
		in   string
		want string
	}{
		{name: "you have disease", in: "You have type 2 diabetes.", want: "You may have type 2 diabetes."},
		{name: "definitely", in: "Based on this you definitely have an infection", want: "Based on this you may have an infection"},
		{name: "diagnosis is", in: "Your diagnosis is anemia.", want: "Possible considerations include anemia."},
		{name: "suffering", in: "you are suffering from hypertension", want: "you may be experiencing hypertension"},
		{name: "this clearly indicates", in: "This clearly indicates a thyroid problem", want: "This may indicate a thyroid problem"},
		{name: "negative finding untouched", in: "You have no signs of infection.", want: "You have no signs of infection."},
		{name: "negated have untouched", in: "you clearly have not developed diabetes", want: "you clearly have not developed diabetes"},
		{name: "french negative untouched", in: "Vous avez aucune infection", want: "Vous avez aucune infection"},
		{name: "appointment untouched", in: "You have an appointment on Monday", want: "You have an appointment on Monday"},
		{name: "french", in: "Vous avez un diabète de type 2", want: "Vous pourriez avoir un diabète de type 2"},
		{name: "french diagnostic", in: "votre diagnostic est une anémie", want: "les considérations possibles incluent une anémie"},
		{name: "arabic", in: "تشخيصك هو فقر الدم", want: "من الاحتمالات الممكنة فقر الدم"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunPostChecks(map[string]any{"summary": tt.in}, []string{"summary"}, compliance.LanguageEnglish)
			require.True(t, res.Safe)
			assert.Equal(t, tt.want, res.Sanitized["summary"])
			assert.Equal(t, tt.in != tt.want, res.Modified)
			if tt.in != tt.want {
				assert.Contains(t, res.Warnings, WarningDiagnosticSoftened)
			}
		})
	}
}

func TestPrescriptionDetectionWarnsOnly(t *testing.T) {
	output := map[string]any{"note": "Take 500 mg twice daily with food."}
	res := RunPostChecks(output, []string{"note"}, compliance.LanguageEnglish)

	require.True(t, res.Safe)
	assert.False(t, res.Modified)
	assert.Equal(t, []string{WarningPrescription}, res.Warnings)
	assert.Equal(t, output["note"], res.Sanitized["note"])
}

func TestLabUnitsAreNotPrescriptions(t *testing.T) {
	output := map[string]any{"summary": "Glucose 180 mg/dL is above the 70-100 range."}
	res := RunPostChecks(output, []string{"summary"}, compliance.LanguageEnglish)
	assert.Empty(t, res.Warnings)
}

func TestRunPostChecksStructure(t *testing.T) {
	tests := []struct {
		name     string
		output   map[string]any
		required []string
		safe     bool
	}{
		{name: "one of several", output: map[string]any{"suggestedSpecialty": "cardiology"}, required: []string{"symptoms", "suggestedSpecialty"}, safe: true},
		{name: "missing all", output: map[string]any{"text": "raw", "parseError": true}, required: []string{"symptoms", "suggestedSpecialty"}},
		{name: "null value", output: map[string]any{"symptoms": nil}, required: []string{"symptoms"}},
		{name: "nil output", output: nil, required: []string{"summary"}},
		{name: "no contract", output: map[string]any{"anything": 1.0}, safe: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunPostChecks(tt.output, tt.required, compliance.LanguageEnglish)
			assert.Equal(t, tt.safe, res.Safe)
			if !tt.safe {
				assert.Nil(t, res.Sanitized)
				assert.Contains(t, res.Warnings, WarningStructureInvalid)
			}
		})
	}
}

func TestRunPostChecksRecursesNestedValues(t *testing.T) {
	output := map[string]any{
		"highlights": []any{
			map[string]any{"explanation": "no need to see a doctor", "value": 180.0},
			[]any{"you have kidney disease"},
		},
		"summary": "ok",
	}
	res := testGate().RunPostChecks(output, []string{"summary"}, compliance.LanguageEnglish)
	require.True(t, res.Safe)

	highlights := res.Sanitized["highlights"].([]any)
	first := highlights[0].(map[string]any)
	assert.True(t, strings.HasPrefix(first["explanation"].(string), "[SAFETY WARNING"))
	assert.Equal(t, 180.0, first["value"])
	assert.Equal(t, "you may have kidney disease", highlights[1].([]any)[0])
	assert.ElementsMatch(t, []string{WarningDangerousAdvice, WarningDiagnosticSoftened}, res.Warnings)
}

func TestRunPostChecksIdempotent(t *testing.T) {
	output := map[string]any{"plan": "Double your dose. Your diagnosis is flu. Take 5 mg daily."}
	first := RunPostChecks(output, []string{"plan"}, compliance.LanguageArabic)
	for i := 0; i < 3; i++ {
		again := RunPostChecks(output, []string{"plan"}, compliance.LanguageArabic)
		assert.Equal(t, first.Safe, again.Safe)
		assert.Equal(t, first.Warnings, again.Warnings)
		assert.Equal(t, first.Sanitized, again.Sanitized)
	}
}
