package ocr

import (
	"regexp"
	"strings"
)

var (
	decimalPattern  = regexp.MustCompile(`\d+[.,]\d+`)
	digitRunPattern = regexp.MustCompile(`[\d.,]{2,}`)
	digitsPattern   = regexp.MustCompile(`\d+`)
)

// ExtractDigits pulls a numeric reading out of recognized text, as
// needed for meter displays and counters. It tries progressively
// looser patterns: a proper decimal number first, then the longest
// run of digits and separators, then all digit runs concatenated.
// Decimal commas are normalized to dots. Returns "" when the text
// holds no digits at all.
func ExtractDigits(text string) string {
	if m := longestMatch(decimalPattern.FindAllString(text, -1)); m != "" {
		return strings.ReplaceAll(m, ",", ".")
	}

	if m := longestMatch(digitRunPattern.FindAllString(text, -1)); m != "" {
		cleaned := strings.Trim(m, ".,")
		if cleaned != "" {
			return strings.ReplaceAll(cleaned, ",", ".")
		}
	}

	runs := digitsPattern.FindAllString(text, -1)
	return strings.Join(runs, "")
}

func longestMatch(matches []string) string {
	best := ""
	for _, m := range matches {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}
