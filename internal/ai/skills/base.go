package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/careai-platform/internal/compliance"
)

// base carries the tuning knobs and prompt tables every handler shares.
type base struct {
	id          ID
	disclaimer  compliance.DisclaimerKind
	temperature float32
	maxTokens   int32
	required    []string
	roles       map[compliance.Language]string
	task        string
	schema      string
}

func (b base) ID() ID                 { return b.id }
func (b base) Temperature() float32   { return b.temperature }
func (b base) MaxTokens() int32       { return b.maxTokens }
func (b base) RequiredKeys() []string { return append([]string(nil), b.required...) }

func (b base) Disclaimer(lang compliance.Language) string {
	return compliance.Disclaimer(b.disclaimer, lang)
}

// SystemPrompt joins the skill's role description with the shared safety
// rules, both in the requested language.
func (b base) SystemPrompt(lang compliance.Language) string {
	role, ok := b.roles[lang]
	if !ok {
		role = b.roles[compliance.LanguageEnglish]
		lang = compliance.LanguageEnglish
	}
	return role + "\n\n" + safetyRules[lang]
}

// BuildUserPrompt renders the task, the caller input, the optional context
// and the JSON output contract.
func (b base) BuildUserPrompt(input map[string]any, rc *RequestContext) string {
	var sb strings.Builder
	sb.WriteString("Task: ")
	sb.WriteString(b.task)
	sb.WriteString("\n\n")
	writeJSONSection(&sb, "Input", input)
	writeContext(&sb, rc)
	sb.WriteString("Respond with a single JSON object, no prose and no code fences, using exactly this shape:\n")
	sb.WriteString(b.schema)
	sb.WriteString("\n")
	return sb.String()
}

func (b base) ParseResponse(raw string) (map[string]any, error) {
	return parseJSONObject(raw)
}

var safetyRules = map[compliance.Language]string{
	compliance.LanguageEnglish: `Rules you must always follow:
- You never give a definitive diagnosis. Use hedged language such as "may indicate" or "possible considerations include".
- You never tell anyone to start, stop or change a medication or dose.
- You always recommend confirming with a licensed healthcare professional.
- If anything suggests an emergency, say that emergency services must be contacted.
- Write every human-readable text value in English. JSON keys stay in English.`,
	compliance.LanguageFrench: `Règles à respecter impérativement :
- Vous ne posez jamais de diagnostic définitif. Utilisez des formulations prudentes comme « peut indiquer » ou « les considérations possibles incluent ».
- Vous ne dites jamais à quelqu'un de commencer, d'arrêter ou de modifier un médicament ou une dose.
- Vous recommandez toujours de confirmer auprès d'un professionnel de santé.
- Si un élément évoque une urgence, indiquez qu'il faut contacter les services d'urgence.
- Rédigez toutes les valeurs textuelles en français. Les clés JSON restent en anglais.`,
	compliance.LanguageArabic: `قواعد يجب الالتزام بها دائمًا:
- لا تقدم أبدًا تشخيصًا نهائيًا. استخدم عبارات حذرة مثل "قد يشير إلى" أو "من الاحتمالات الممكنة".
- لا تطلب أبدًا من أي شخص بدء دواء أو إيقافه أو تغيير جرعته.
- أوصِ دائمًا بالتأكد من أخصائي رعاية صحية مرخص.
- إذا كان هناك ما يشير إلى حالة طارئة، اذكر أنه يجب الاتصال بخدمات الطوارئ.
- اكتب جميع القيم النصية باللغة العربية. تبقى مفاتيح JSON باللغة الإنجليزية.`,
}

func writeJSONSection(sb *strings.Builder, title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", v))
	}
	sb.WriteString(title)
	sb.WriteString(":\n")
	sb.Write(data)
	sb.WriteString("\n\n")
}

func writeContext(sb *strings.Builder, rc *RequestContext) {
	if rc == nil {
		return
	}
	if strings.TrimSpace(rc.Instructions) != "" {
		sb.WriteString("Additional instructions from the care team:\n")
		sb.WriteString(strings.TrimSpace(rc.Instructions))
		sb.WriteString("\n\n")
	}
	if len(rc.ProtocolHints) > 0 {
		sb.WriteString("Protocol hints:\n")
		for _, hint := range rc.ProtocolHints {
			sb.WriteString("- ")
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	if len(rc.PreviousResults) > 0 {
		writeJSONSection(sb, "Previous results", rc.PreviousResults)
	}
	if !rc.PatientHistory.empty() {
		writeJSONSection(sb, "Patient history", rc.PatientHistory)
	}
}

var errNoJSONObject = errors.New("skills: response contains no JSON object")

// parseJSONObject extracts the outermost JSON object from a model reply,
// tolerating Markdown fences and leading or trailing prose.
func parseJSONObject(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	if start < 0 {
		return nil, errNoJSONObject
	}
	// Decoding stops at the end of the first object, so trailing prose is
	// ignored even when it contains braces.
	var out map[string]any
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&out); err != nil {
		return nil, fmt.Errorf("skills: decode response: %w", err)
	}
	return out, nil
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func nonEmptyString(input map[string]any, key string) bool {
	s, ok := input[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

func nonEmptyArray(input map[string]any, key string) ([]any, bool) {
	arr, ok := input[key].([]any)
	return arr, ok && len(arr) > 0
}

func object(input map[string]any, key string) (map[string]any, bool) {
	obj, ok := input[key].(map[string]any)
	return obj, ok
}
