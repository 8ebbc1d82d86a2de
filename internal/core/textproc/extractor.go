package textproc

import (
	"regexp"
	"strings"
)

const defaultPhonePattern = `(?:\+34|0034)?\s*\b[6789]\d{8}\b`

// Elements groups every structured value pulled out of a document.
type Elements struct {
	Emails      []string `json:"emails,omitempty"`
	Phones      []string `json:"phones,omitempty"`
	Dates       []string `json:"dates,omitempty"`
	Amounts     []string `json:"amounts,omitempty"`
	PostalCodes []string `json:"postal_codes,omitempty"`
	IDNumbers   []string `json:"id_numbers,omitempty"`
	URLs        []string `json:"urls,omitempty"`
	IBANs       []string `json:"ibans,omitempty"`
}

// Count returns the total number of extracted values.
func (e Elements) Count() int {
	return len(e.Emails) + len(e.Phones) + len(e.Dates) + len(e.Amounts) +
		len(e.PostalCodes) + len(e.IDNumbers) + len(e.URLs) + len(e.IBANs)
}

// Extractor finds business-relevant values in cleaned text. All
// patterns are compiled once at construction.
type Extractor struct {
	email    *regexp.Regexp
	phone    *regexp.Regexp
	date     *regexp.Regexp
	amount   *regexp.Regexp
	postal   *regexp.Regexp
	idNumber *regexp.Regexp
	url      *regexp.Regexp
	iban     *regexp.Regexp
	keyValue *regexp.Regexp
}

// NewExtractor compiles the extraction patterns. phonePattern
// replaces the default Spanish phone regex when deployments target
// another numbering plan; empty keeps the default. An invalid custom
// pattern also falls back to the default rather than failing startup.
func NewExtractor(phonePattern string) *Extractor {
	phone := defaultPhonePattern
	if phonePattern != "" {
		if _, err := regexp.Compile(phonePattern); err == nil {
			phone = phonePattern
		}
	}

	return &Extractor{
		email:    regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		phone:    regexp.MustCompile(phone),
		date:     regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`),
		amount:   regexp.MustCompile(`\d+(?:[.,]\d{3})*[.,]\d{2}\s*[€$]|[€$]\s*\d+(?:[.,]\d{3})*[.,]\d{2}`),
		postal:   regexp.MustCompile(`\b\d{5}\b`),
		idNumber: regexp.MustCompile(`\b\d{8}[A-Za-z]\b`),
		url:      regexp.MustCompile(`https?://[^\s<>"]+`),
		iban:     regexp.MustCompile(`\bES\d{2}\s?(?:\d{4}\s?){5}\b|\bES\d{22}\b`),
		keyValue: regexp.MustCompile(`(?m)^\s*([A-Za-zÁÉÍÓÚÑáéíóúñ][A-Za-zÁÉÍÓÚÑáéíóúñ .]{1,30}?)\s*:\s*(.+?)\s*$`),
	}
}

// Extract pulls every recognized element type from the text.
// Duplicates within a type are dropped, first occurrence order kept.
func (e *Extractor) Extract(text string) Elements {
	return Elements{
		Emails:      dedupe(e.email.FindAllString(text, -1)),
		Phones:      trimAll(dedupe(e.phone.FindAllString(text, -1))),
		Dates:       dedupe(e.date.FindAllString(text, -1)),
		Amounts:     trimAll(dedupe(e.amount.FindAllString(text, -1))),
		PostalCodes: dedupe(e.postal.FindAllString(text, -1)),
		IDNumbers:   dedupe(e.idNumber.FindAllString(text, -1)),
		URLs:        dedupe(e.url.FindAllString(text, -1)),
		IBANs:       dedupe(e.iban.FindAllString(text, -1)),
	}
}

// KeyValuePairs parses "Label: value" lines, the dominant layout of
// invoices and forms. Later duplicates of a label are ignored.
func (e *Extractor) KeyValuePairs(text string) map[string]string {
	pairs := make(map[string]string)
	for _, m := range e.keyValue.FindAllStringSubmatch(text, -1) {
		key := strings.TrimSpace(m[1])
		if _, exists := pairs[key]; !exists {
			pairs[key] = strings.TrimSpace(m[2])
		}
	}
	return pairs
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func trimAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}
