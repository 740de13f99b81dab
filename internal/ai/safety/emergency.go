package safety

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type emergencyKeyword struct {
	phrase   string
	category string
}

// emergencyKeywords is scanned in full for every request whatever its
// declared language.
var emergencyKeywords = []emergencyKeyword{
	// English
	{"suicide", "self_harm"},
	{"suicidal", "self_harm"},
	{"kill myself", "self_harm"},
	{"end my life", "self_harm"},
	{"want to die", "self_harm"},
	{"hurt myself", "self_harm"},
	{"can't breathe", "breathing"},
	{"cant breathe", "breathing"},
	{"cannot breathe", "breathing"},
	{"unable to breathe", "breathing"},
	{"choking", "breathing"},
	{"chest pain", "cardiac"},
	{"heart attack", "cardiac"},
	{"severe bleeding", "bleeding"},
	{"bleeding heavily", "bleeding"},
	{"won't stop bleeding", "bleeding"},
	{"overdose", "poisoning"},
	{"poisoning", "poisoning"},
	{"poisoned", "poisoning"},
	{"swallowed bleach", "poisoning"},
	{"unconscious", "neurological"},
	{"seizure", "neurological"},
	{"stroke", "neurological"},
	{"i'm dying", "life_threatening"},
	{"i am dying", "life_threatening"},
	{"anaphylaxis", "life_threatening"},

	// French
	{"me suicider", "self_harm"},
	{"envie de mourir", "self_harm"},
	{"me tuer", "self_harm"},
	{"mettre fin à mes jours", "self_harm"},
	{"je ne peux pas respirer", "breathing"},
	{"je n'arrive pas à respirer", "breathing"},
	{"j'étouffe", "breathing"},
	{"douleur thoracique", "cardiac"},
	{"douleur à la poitrine", "cardiac"},
	{"crise cardiaque", "cardiac"},
	{"saignement abondant", "bleeding"},
	{"hémorragie", "bleeding"},
	{"surdose", "poisoning"},
	{"empoisonnement", "poisoning"},
	{"intoxication", "poisoning"},
	{"inconscient", "neurological"},
	{"convulsions", "neurological"},
	{"avc", "neurological"},
	{"je vais mourir", "life_threatening"},
	{"je suis en train de mourir", "life_threatening"},

	// Arabic
	{"انتحار", "self_harm"},
	{"أقتل نفسي", "self_harm"},
	{"أريد أن أموت", "self_harm"},
	{"لا أستطيع التنفس", "breathing"},
	{"ضيق شديد في التنفس", "breathing"},
	{"ألم في الصدر", "cardiac"},
	{"نوبة قلبية", "cardiac"},
	{"نزيف حاد", "bleeding"},
	{"نزيف شديد", "bleeding"},
	{"جرعة زائدة", "poisoning"},
	{"تسمم", "poisoning"},
	{"فاقد الوعي", "neurological"},
	{"سكتة دماغية", "neurological"},
	{"تشنجات", "neurological"},
	{"أنا أموت", "life_threatening"},
}

type emergencyMatcher struct {
	re       *regexp.Regexp // nil for phrases matched by substring
	phrase   string
	category string
}

var emergencyMatchers = compileEmergencyMatchers(emergencyKeywords)

// compileEmergencyMatchers anchors phrases that start and end with an ASCII
// letter on word boundaries. Others fall back to substring matching since
// \b only understands ASCII word characters.
func compileEmergencyMatchers(keywords []emergencyKeyword) []emergencyMatcher {
	out := make([]emergencyMatcher, 0, len(keywords))
	for _, kw := range keywords {
		phrase := normalizeForScan(kw.phrase)
		m := emergencyMatcher{phrase: phrase, category: kw.category}
		first, _ := utf8.DecodeRuneInString(phrase)
		last, _ := utf8.DecodeLastRuneInString(phrase)
		if isASCIILetter(first) && isASCIILetter(last) {
			m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// arabicLetters folds hamza-carrying alef, alef maqsura and ta marbuta to
// the spellings people type on informal keyboards.
var arabicLetters = strings.NewReplacer(
	"أ", "ا", "إ", "ا", "آ", "ا",
	"ى", "ي",
	"ة", "ه",
)

// normalizeForScan composes to NFC, lowercases and folds apostrophes and
// Arabic orthography. Keywords and scanned text go through the same path.
func normalizeForScan(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	s = strings.Map(dropArabicMarks, s)
	return arabicLetters.Replace(apostrophes.Replace(s))
}

// dropArabicMarks removes tashkeel (U+064B..U+0652) and tatweel (U+0640).
func dropArabicMarks(r rune) rune {
	if r == '\u0640' || (r >= '\u064B' && r <= '\u0652') {
		return -1
	}
	return r
}

// DetectEmergency returns the sorted, de-duplicated emergency categories
// found anywhere in v (string leaves and map keys).
func DetectEmergency(v any) []string {
	found := map[string]struct{}{}
	walkStrings(v, func(s string) {
		text := normalizeForScan(s)
		for _, m := range emergencyMatchers {
			if _, ok := found[m.category]; ok {
				continue
			}
			if matchesEmergency(m, text) {
				found[m.category] = struct{}{}
			}
		}
	})
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func matchesEmergency(m emergencyMatcher, text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.phrase)
}

// walkStrings calls fn for every string leaf and map key of a decoded JSON
// value.
func walkStrings(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case map[string]any:
		for k, child := range t {
			fn(k)
			walkStrings(child, fn)
		}
	case []any:
		for _, child := range t {
			walkStrings(child, fn)
		}
	case []string:
		for _, s := range t {
			fn(s)
		}
	case []map[string]any:
		for _, child := range t {
			walkStrings(child, fn)
		}
	}
}
