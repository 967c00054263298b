// Package normalize canonicalizes free-text names so that differently
// typed or OCR-noisy spellings of the same thing compare equal. The supply
// normalizer and the person-name normalizer are both deterministic pure
// functions; every caller that compares names must go through them so that
// a name maps to the same key regardless of where it came from.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and drops combining diacritics,
// so "encefálico" and "encefalico" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	disallowed = regexp.MustCompile(`[^\w\s.,x-]`)
	spaceRuns  = regexp.MustCompile(`\s+`)
	dimensions = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)`)
)

// synonyms folds spelling variants that show up across documents.
var synonyms = map[string]string{
	"standard": "estandar",
}

// Supply canonicalizes a supply name for comparison: diacritics stripped,
// lower-cased, the multiplication sign folded to "x", characters outside
// {word, space, ".", ",", "x", "-"} removed, whitespace collapsed,
// dimension expressions like "3.5 x 55" joined to "3.5x55", and the
// synonym table applied.
func Supply(name string) string {
	if name == "" {
		return ""
	}
	s := stripDiacritics(name)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "×", "x")
	s = disallowed.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = dimensions.ReplaceAllString(s, "${1}x${2}")
	for old, repl := range synonyms {
		s = strings.ReplaceAll(s, old, repl)
	}
	return strings.TrimSpace(s)
}

// honorifics are dropped only as whole leading tokens, so a name that
// merely begins with one of these strings is left intact.
var honorifics = map[string]bool{
	"DR": true, "DR.": true, "DRA": true, "DRA.": true, "MD": true, "M.D.": true,
}

// Person canonicalizes a person name: diacritics stripped, upper-cased,
// whitespace collapsed and honorific title tokens removed.
func Person(name string) string {
	if name == "" {
		return ""
	}
	s := stripDiacritics(name)
	tokens := strings.Fields(strings.ToUpper(s))
	for len(tokens) > 0 && honorifics[tokens[0]] {
		tokens = tokens[1:]
	}
	return strings.Join(tokens, " ")
}

// Digits keeps only the digit characters of an identifier, so
// "1.234.567-8" and "12345678" compare equal.
func Digits(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
