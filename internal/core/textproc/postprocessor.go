package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// confusionRule rewrites one character confusion the recognizer makes
// between visually similar glyphs, guarded by surrounding context so
// legitimate mixed tokens survive untouched.
type confusionRule struct {
	pattern *regexp.Regexp
	replace string
}

// confusionRules cover the digit/letter swaps seen in practice.
// Boundary rule: a digit is corrected to its letter look-alike only
// when the whole token is otherwise letters (flanked on both sides,
// or leading a run of letters), and symmetrically for letters inside
// all-digit tokens. Mixed alphanumeric codes such as R2D2 match no
// rule and pure digit runs such as 2024 are never touched.
var confusionRules = []confusionRule{
	{regexp.MustCompile(`\b0([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]{2,})\b`), "O$1"},
	{regexp.MustCompile(`\b([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)0([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\b`), "${1}O$2"},
	{regexp.MustCompile(`\b([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)1([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\b`), "${1}I$2"},
	{regexp.MustCompile(`\b([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)5([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\b`), "${1}S$2"},
	{regexp.MustCompile(`\b([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)8([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\b`), "${1}B$2"},
	{regexp.MustCompile(`\b([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)6([A-Za-zÁÉÍÓÚÜÑáéíóúüñ]+)\b`), "${1}G$2"},
	{regexp.MustCompile(`\b(\d+)[oO](\d+)\b`), "${1}0$2"},
	{regexp.MustCompile(`\b(\d+)[lI](\d+)\b`), "${1}1$2"},
	{regexp.MustCompile(`\b(\d+)S(\d+)\b`), "${1}5$2"},
	{regexp.MustCompile(`\b(\d+)B(\d+)\b`), "${1}8$2"},
	{regexp.MustCompile(`\b(\d+)G(\d+)\b`), "${1}6$2"},
}

// languageRule is a conservative, case-restoring substitution for one
// high-frequency function word; it repairs case flips the recognizer
// introduces ("qUe", "DEl") and is a no-op on already-clean text.
type languageRule struct {
	pattern *regexp.Regexp
	replace string
}

var languageRules = map[string][]languageRule{
	"es": {
		{regexp.MustCompile(`(?i)\bque\b`), "que"},
		{regexp.MustCompile(`(?i)\bdel\b`), "del"},
		{regexp.MustCompile(`(?i)\bcon\b`), "con"},
		{regexp.MustCompile(`(?i)\bpor\b`), "por"},
		{regexp.MustCompile(`(?i)\bpara\b`), "para"},
	},
	"en": {
		{regexp.MustCompile(`(?i)\bthe\b`), "the"},
		{regexp.MustCompile(`(?i)\band\b`), "and"},
		{regexp.MustCompile(`(?i)\bwith\b`), "with"},
		{regexp.MustCompile(`(?i)\bfrom\b`), "from"},
		{regexp.MustCompile(`(?i)\bthis\b`), "this"},
		{regexp.MustCompile(`(?i)\bthat\b`), "that"},
	},
}

var (
	spaceRuns        = regexp.MustCompile(`[ \t]+`)
	newlineRuns      = regexp.MustCompile(`\n{3,}`)
	lineEdges        = regexp.MustCompile(`(?m)[ \t]+$`)
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([,.;:!?])`)
	afterOpenBracket = regexp.MustCompile(`([(\[])[ \t]+`)
	beforeCloseBrace = regexp.MustCompile(`[ \t]+([)\]])`)

	invoiceKeyword = regexp.MustCompile(`(?i)\b(factura|total|subtotal|iva)\b`)
	euroAmount     = regexp.MustCompile(`(\d+)[.,](\d{2})[ \t]*€`)
	dollarAmount   = regexp.MustCompile(`(\d+)[.,](\d{2})[ \t]*\$`)

	contactHeading = regexp.MustCompile(`\b(TELEFONO|TELÉFONO|DIRECCION|DIRECCIÓN)\b`)
	contactEmail   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	contactPhone   = regexp.MustCompile(`\b(\d{3})[ \t]*(\d{3})[ \t]*(\d{3})\b`)
)

// artifactReplacer strips scanner artifacts that are unambiguous
// regardless of context.
var artifactReplacer = strings.NewReplacer(
	"|", "I",
	"`", "'",
	"´", "'",
	"ﬁ", "fi",
	"ﬂ", "fl",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"­", "",
	" ", " ",
)

// QualityMetrics describes the cleaned text as the recognizer left
// it, for callers that want to reason about output shape.
type QualityMetrics struct {
	Words            int     `json:"words"`
	Chars            int     `json:"chars"`
	Lines            int     `json:"lines"`
	AvgWordLength    float64 `json:"avg_word_length"`
	HasNumbers       bool    `json:"has_numbers"`
	HasPunctuation   bool    `json:"has_punctuation"`
	HasUppercase     bool    `json:"has_uppercase"`
	HasLowercase     bool    `json:"has_lowercase"`
	SpecialCharRatio float64 `json:"special_char_ratio"`
	DigitRatio       float64 `json:"digit_ratio"`
	SpaceRatio       float64 `json:"space_ratio"`
}

// Result is the cleaned output plus everything extracted from it.
// Confidence is the postprocessor's own estimate on a 0..1 scale,
// independent of whichever engine produced the raw text.
type Result struct {
	Text        string
	Elements    Elements
	KeyValues   map[string]string
	Quality     QualityMetrics
	Corrections int
	Confidence  float64
}

// Postprocessor cleans raw recognition output and extracts structured
// elements from it. Process is idempotent: feeding its output back in
// changes nothing.
type Postprocessor struct {
	extractor *Extractor
}

// NewPostprocessor builds a postprocessor. phonePattern overrides the
// national phone regex; empty selects the default (Spanish numbers).
func NewPostprocessor(phonePattern string) *Postprocessor {
	return &Postprocessor{extractor: NewExtractor(phonePattern)}
}

// Process runs the full chain over raw recognizer output: Unicode
// normalization, whitespace and artifact cleanup, confusion
// correction, language and document-type corrections, quality
// analysis, element extraction and confidence scoring. Unknown
// language or document type values skip their stage rather than fail.
func (p *Postprocessor) Process(raw, language, docType string) Result {
	text, corrections := p.clean(raw)

	var langCorrections, docCorrections int
	text, langCorrections = applyLanguageCorrections(text, language)
	text, docCorrections = applyDocumentCorrections(text, docType)
	corrections += langCorrections + docCorrections
	text = strings.TrimSpace(text)

	quality := analyzeQuality(text)
	elements := p.extractor.Extract(text)

	return Result{
		Text:        text,
		Elements:    elements,
		KeyValues:   p.extractor.KeyValuePairs(text),
		Quality:     quality,
		Corrections: corrections,
		Confidence:  scoreText(text, language, quality),
	}
}

// clean normalizes Unicode and whitespace, drops artifacts, and
// applies the confusion rules until the text stops changing, so
// chained confusions resolve fully and a second pass is a no-op.
func (p *Postprocessor) clean(raw string) (string, int) {
	text := norm.NFC.String(raw)
	text = artifactReplacer.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = afterOpenBracket.ReplaceAllString(text, "$1")
	text = beforeCloseBrace.ReplaceAllString(text, "$1")
	text = lineEdges.ReplaceAllString(text, "")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	corrections := 0
	for pass := 0; pass < 5; pass++ {
		changed := false
		for _, rule := range confusionRules {
			matches := rule.pattern.FindAllStringIndex(text, -1)
			if len(matches) == 0 {
				continue
			}
			text = rule.pattern.ReplaceAllString(text, rule.replace)
			corrections += len(matches)
			changed = true
		}
		if !changed {
			break
		}
	}
	return text, corrections
}

// applyLanguageCorrections repairs case-flipped function words for
// the supported languages. Unrecognized codes pass through untouched.
func applyLanguageCorrections(text, language string) (string, int) {
	rules, ok := languageRules[language]
	if !ok {
		return text, 0
	}

	corrections := 0
	for _, rule := range rules {
		fixed := rule.pattern.ReplaceAllString(text, rule.replace)
		if fixed != text {
			corrections++
			text = fixed
		}
	}
	return text, corrections
}

// applyDocumentCorrections applies type-specific cleanup: invoices
// get currency formatting and keyword casing repair, contact sheets
// get lowercased emails and grouped phone digits. Other document
// types pass through untouched.
func applyDocumentCorrections(text, docType string) (string, int) {
	corrections := 0

	switch docType {
	case "invoice":
		fixed := invoiceKeyword.ReplaceAllStringFunc(text, fixKeywordCase)
		if fixed != text {
			corrections++
			text = fixed
		}
		// Euro amounts take a decimal comma, dollar amounts a decimal dot.
		fixed = euroAmount.ReplaceAllString(text, "$1,$2 €")
		if fixed != text {
			corrections++
			text = fixed
		}
		fixed = dollarAmount.ReplaceAllString(text, "$1.$2 $$")
		if fixed != text {
			corrections++
			text = fixed
		}
	case "contact":
		fixed := contactHeading.ReplaceAllStringFunc(text, func(m string) string {
			switch m {
			case "TELEFONO":
				return "TELÉFONO"
			case "DIRECCION":
				return "DIRECCIÓN"
			default:
				return m
			}
		})
		if fixed != text {
			corrections++
			text = fixed
		}
		fixed = contactEmail.ReplaceAllStringFunc(text, strings.ToLower)
		if fixed != text {
			corrections++
			text = fixed
		}
		fixed = contactPhone.ReplaceAllString(text, "$1 $2 $3")
		if fixed != text {
			corrections++
			text = fixed
		}
	}

	return text, corrections
}

// fixKeywordCase repairs garbled casing ("fACTURA", "ToTAL") by
// uppercasing it, while leaving all-lower, all-upper and Title forms
// alone: those are legitimate author choices, not recognizer damage.
func fixKeywordCase(word string) string {
	lower := strings.ToLower(word)
	upper := strings.ToUpper(word)
	title := strings.ToUpper(word[:1]) + lower[1:]
	if word == lower || word == upper || word == title {
		return word
	}
	return upper
}

var (
	wordPattern      = regexp.MustCompile(`\b\w+\b`)
	digitPattern     = regexp.MustCompile(`\d`)
	punctPattern     = regexp.MustCompile(`[,.;:!?]`)
	upperPattern     = regexp.MustCompile(`[A-ZÁÉÍÓÚÜÑ]`)
	lowerPattern     = regexp.MustCompile(`[a-záéíóúüñ]`)
	specialPattern   = regexp.MustCompile(`[^\w\s]`)
	whitespacePat    = regexp.MustCompile(`\s`)
	capitalizedWord  = regexp.MustCompile(`[A-Z][a-z]+`)
	longWordPattern  = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
	numberRunPattern = regexp.MustCompile(`\d+`)

	commonWordPatterns = map[string]*regexp.Regexp{
		"es": regexp.MustCompile(`(?i)\b(el|la|de|en|y|a|un|una|con|por|para|como|su|del|al)\b`),
		"en": regexp.MustCompile(`(?i)\b(the|and|of|to|in|is|for|on|with|at)\b`),
	}
)

// analyzeQuality computes shape metrics over the cleaned text.
func analyzeQuality(text string) QualityMetrics {
	if text == "" {
		return QualityMetrics{}
	}

	words := wordPattern.FindAllString(text, -1)
	totalWordLen := 0
	for _, w := range words {
		totalWordLen += len(w)
	}
	avgWordLen := 0.0
	if len(words) > 0 {
		avgWordLen = float64(totalWordLen) / float64(len(words))
	}

	chars := len(text)
	return QualityMetrics{
		Words:            len(words),
		Chars:            chars,
		Lines:            len(strings.Split(text, "\n")),
		AvgWordLength:    avgWordLen,
		HasNumbers:       digitPattern.MatchString(text),
		HasPunctuation:   punctPattern.MatchString(text),
		HasUppercase:     upperPattern.MatchString(text),
		HasLowercase:     lowerPattern.MatchString(text),
		SpecialCharRatio: float64(len(specialPattern.FindAllString(text, -1))) / float64(chars),
		DigitRatio:       float64(len(digitPattern.FindAllString(text, -1))) / float64(chars),
		SpaceRatio:       float64(len(whitespacePat.FindAllString(text, -1))) / float64(chars),
	}
}

// scoreText estimates how trustworthy the cleaned text is on 0..1.
// Each signal contributes a capped weighted increment so no single
// one dominates; a very short text is halved, mixed case and real
// punctuation earn a bonus, and symbol soup is discounted.
func scoreText(text, language string, quality QualityMetrics) float64 {
	if text == "" {
		return 0
	}

	commonWords, ok := commonWordPatterns[language]
	if !ok {
		commonWords = commonWordPatterns["es"]
	}

	score := 0.0
	score += 0.1 * cappedRatio(len(numberRunPattern.FindAllString(text, -1)))
	score += 0.2 * cappedRatio(len(capitalizedWord.FindAllString(text, -1)))
	score += 0.3 * cappedRatio(len(longWordPattern.FindAllString(text, -1)))
	score += 0.1 * cappedRatio(len(punctPattern.FindAllString(text, -1)))
	score += 0.2 * cappedRatio(len(commonWords.FindAllString(text, -1)))

	if len(text) < 10 {
		score *= 0.5
	}
	if quality.HasPunctuation {
		score += 0.1
	}
	if quality.HasUppercase && quality.HasLowercase {
		score += 0.1
	}
	if quality.SpecialCharRatio > 0.3 {
		score *= 0.7
	}

	if score > 1 {
		return 1
	}
	return score
}

// cappedRatio maps a match count onto 0..1, saturating at ten.
func cappedRatio(matches int) float64 {
	if matches >= 10 {
		return 1
	}
	return float64(matches) / 10
}
