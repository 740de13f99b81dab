package skills

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

func TestLookup(t *testing.T) {
	for _, id := range Supported() {
		h, err := Lookup(id)
		require.NoError(t, err)
		assert.Equal(t, id, h.ID())
		assert.NotEmpty(t, h.RequiredKeys())
		assert.Greater(t, h.MaxTokens(), int32(0))
	}

	_, err := Lookup("translate_document")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSkill))
	assert.Contains(t, err.Error(), "translate_document")
}

func TestSupported(t *testing.T) {
	ids := Supported()
	assert.Len(t, ids, 7)
	assert.True(t, IsSupported(SummarizeLab))
	assert.False(t, IsSupported("summarize_radiology"))
	for i := 1; i < len(ids); i++ {
		assert.Less(t, string(ids[i-1]), string(ids[i]))
	}
}

func TestMustBuildRegistryPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		mustBuildRegistry(newTriageHandler(), newTriageHandler())
	})
}

func TestRequiredKeysReturnsCopy(t *testing.T) {
	h, err := Lookup(TriageMessage)
	require.NoError(t, err)
	keys := h.RequiredKeys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"urgency", "category"}, h.RequiredKeys())
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		skill   ID
		input   map[string]any
		wantErr bool
	}{
		{
			name:  "lab with results",
			skill: SummarizeLab,
			input: map[string]any{"labResult": map[string]any{"results": []any{
				map[string]any{"test_name": "Glucose", "value": 180.0, "unit": "mg/dL", "reference_range": "70-100"},
			}}},
		},
		{name: "lab missing object", skill: SummarizeLab, input: map[string]any{}, wantErr: true},
		{name: "lab empty results", skill: SummarizeLab, input: map[string]any{"labResult": map[string]any{"results": []any{}}}, wantErr: true},
		{
			name:  "lab row without value",
			skill: SummarizeLab,
			input: map[string]any{"labResult": map[string]any{"results": []any{
				map[string]any{"test_name": "Glucose"},
			}}},
			wantErr: true,
		},
		{name: "symptoms free text", skill: ExtractSymptoms, input: map[string]any{"freeText": "headache for two days"}},
		{name: "symptoms messages", skill: ExtractSymptoms, input: map[string]any{"messages": []any{"I feel dizzy"}}},
		{name: "symptoms blank", skill: ExtractSymptoms, input: map[string]any{"freeText": "   "}, wantErr: true},
		{name: "note transcript", skill: DraftClinicalNote, input: map[string]any{"transcript": "Patient reports cough."}},
		{name: "note bad type", skill: DraftClinicalNote, input: map[string]any{"notes": "cough", "noteType": "poem"}, wantErr: true},
		{name: "note missing", skill: DraftClinicalNote, input: map[string]any{"noteType": "soap"}, wantErr: true},
		{name: "triage message", skill: TriageMessage, input: map[string]any{"message": "Can I move my appointment?"}},
		{name: "triage missing", skill: TriageMessage, input: map[string]any{"text": "hi"}, wantErr: true},
		{name: "care plan conditions", skill: GenerateCarePlan, input: map[string]any{"conditions": []any{"type 2 diabetes"}}},
		{name: "care plan diagnosis", skill: GenerateCarePlan, input: map[string]any{"diagnosis": "hypertension"}},
		{name: "care plan empty", skill: GenerateCarePlan, input: map[string]any{"conditions": []any{}}, wantErr: true},
		{
			name:  "inventory items",
			skill: InventoryForecast,
			input: map[string]any{"items": []any{map[string]any{"name": "Paracetamol 500mg", "stock": 40.0}}},
		},
		{
			name:    "inventory unnamed item",
			skill:   InventoryForecast,
			input:   map[string]any{"items": []any{map[string]any{"stock": 40.0}}},
			wantErr: true,
		},
		{name: "quality content", skill: QualityCheck, input: map[string]any{"content": "Rx: amoxicillin"}},
		{name: "quality record", skill: QualityCheck, input: map[string]any{"record": map[string]any{"type": "referral"}}},
		{name: "quality empty record", skill: QualityCheck, input: map[string]any{"record": map[string]any{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Lookup(tt.skill)
			require.NoError(t, err)
			err = h.ValidateInput(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClinicalNoteTypeErrorOmitsValue(t *testing.T) {
	err := newClinicalNoteHandler().ValidateInput(map[string]any{"notes": "cough", "noteType": "Jane Doe"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "noteType")
	assert.NotContains(t, err.Error(), "Jane Doe")
}

func TestInventoryRejectsOversizedBatch(t *testing.T) {
	items := make([]any, maxForecastItems+1)
	for i := range items {
		items[i] = map[string]any{"name": "item"}
	}
	err := newInventoryForecastHandler().ValidateInput(map[string]any{"items": items})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSystemPromptLanguages(t *testing.T) {
	h := newTriageHandler()

	en := h.SystemPrompt(compliance.LanguageEnglish)
	fr := h.SystemPrompt(compliance.LanguageFrench)
	ar := h.SystemPrompt(compliance.LanguageArabic)

	assert.Contains(t, en, "never give a definitive diagnosis")
	assert.Contains(t, fr, "diagnostic définitif")
	assert.Contains(t, ar, "تشخيصًا نهائيًا")
	assert.Equal(t, en, h.SystemPrompt("de"))
}

func TestBuildUserPrompt(t *testing.T) {
	h := newLabSummaryHandler()
	input := map[string]any{"labResult": map[string]any{"results": []any{
		map[string]any{"test_name": "Glucose", "value": 180},
	}}}

	plain := h.BuildUserPrompt(input, nil)
	assert.True(t, strings.HasPrefix(plain, "Task: "))
	assert.Contains(t, plain, `"test_name": "Glucose"`)
	assert.Contains(t, plain, `"highlights"`)
	assert.NotContains(t, plain, "Patient history")

	rc := &RequestContext{
		Instructions:  "  keep it short  ",
		ProtocolHints: []string{"fasting sample"},
		PatientHistory: &PatientHistory{
			Conditions: []string{"prediabetes"},
		},
	}
	enriched := h.BuildUserPrompt(input, rc)
	assert.Contains(t, enriched, "Additional instructions from the care team:\nkeep it short\n")
	assert.Contains(t, enriched, "- fasting sample")
	assert.Contains(t, enriched, "Patient history:")
	assert.Contains(t, enriched, "prediabetes")
	assert.NotContains(t, enriched, "Previous results")
}

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{name: "bare object", raw: `{"summary":"ok"}`, wantKey: "summary"},
		{name: "fenced", raw: "```json\n{\"summary\":\"ok\"}\n```", wantKey: "summary"},
		{name: "plain fence", raw: "```\n{\"issues\":[]}\n```", wantKey: "issues"},
		{name: "surrounding prose", raw: "Here you go:\n{\"score\": 80}\nThanks", wantKey: "score"},
		{name: "trailing prose with braces", raw: `{"a":1} see {note}`, wantKey: "a"},
		{name: "nested object then prose", raw: "{\"summary\":{\"text\":\"ok\"}}\nUse {placeholders} carefully.", wantKey: "summary"},
		{name: "no object", raw: "I cannot help with that.", wantErr: true},
		{name: "unterminated object", raw: `{"summary": "ok"`, wantErr: true},
		{name: "broken object", raw: `{"summary": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseJSONObject(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantKey)
		})
	}
}

func TestLabParseResponseNormalizesStatus(t *testing.T) {
	raw := `{"summary":"Glucose is above range.","highlights":[{"test":"Glucose","status":" Elevated "},{"test":"K","status":"weird"}]}`

	out, err := newLabSummaryHandler().ParseResponse(raw)
	require.NoError(t, err)

	highlights := out["highlights"].([]any)
	assert.Equal(t, "high", highlights[0].(map[string]any)["status"])
	assert.Equal(t, "weird", highlights[1].(map[string]any)["status"])
}

func TestTriageParseResponse(t *testing.T) {
	h := newTriageHandler()

	out, err := h.ParseResponse(`{"urgency":"HIGH","category":"clinical_question"}`)
	require.NoError(t, err)
	assert.Equal(t, "high", out["urgency"])

	out, err = h.ParseResponse(`{"urgency":"whenever","category":"billing"}`)
	require.NoError(t, err)
	assert.NotContains(t, out, "urgency")
	assert.Equal(t, "billing", out["category"])
}

func TestDisclaimerPerLanguage(t *testing.T) {
	for _, id := range Supported() {
		h, _ := Lookup(id)
		for _, lang := range compliance.Languages {
			assert.NotEmpty(t, h.Disclaimer(lang), "%s/%s", id, lang)
		}
	}
}
