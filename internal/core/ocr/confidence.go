package ocr

import (
	"strings"
	"unicode"
)

// commonWords are high-frequency Spanish and English tokens. Their
// presence is weak evidence the recognizer produced language rather
// than noise.
var commonWords = []string{
	"el", "la", "de", "que", "y", "en", "un", "una", "los", "las",
	"por", "con", "para", "del", "se", "no", "su",
	"the", "of", "and", "to", "in", "is", "for", "on", "with", "at",
}

// estimateConfidence scores recognized text heuristically on 0..100.
// Cloud responses that omit per-word confidence still need a number
// the orchestrator can compare against its threshold.
func estimateConfidence(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	score := 50.0

	if n := len(trimmed); n >= 10 && n <= 1000 {
		score += 20
	}

	lower := strings.ToLower(trimmed)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	wordSet := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		wordSet[f] = struct{}{}
	}
	hits := 0
	for _, w := range commonWords {
		if _, ok := wordSet[w]; ok {
			hits++
		}
	}
	if hits > 5 {
		hits = 5
	}
	score += float64(hits) * 4 // up to +20

	if weirdRatio(trimmed) > 0.10 {
		score -= 20
	}

	return clampScore(score)
}

// estimateEngineConfidence extends the heuristic for local engine
// output, which tends to fragment noisy scans into short junk lines.
func estimateEngineConfidence(text string) float64 {
	score := estimateConfidence(text)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters++
		}
	}
	if float64(letters)/float64(len([]rune(trimmed))) < 0.5 {
		score -= 15
	}

	lines := strings.Split(trimmed, "\n")
	short := 0
	for _, l := range lines {
		if len(strings.TrimSpace(l)) > 0 && len(strings.TrimSpace(l)) < 3 {
			short++
		}
	}
	if len(lines) > 0 && float64(short)/float64(len(lines)) > 0.5 {
		score -= 10
	}

	return clampScore(score)
}

// weirdRatio reports the fraction of characters outside letters,
// digits, whitespace and common punctuation.
func weirdRatio(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	weird := 0
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		case strings.ContainsRune(".,;:!?¿¡()[]{}«»\"'-_/€$%@#&+*=", r):
		default:
			weird++
		}
	}
	return float64(weird) / float64(len(runes))
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
