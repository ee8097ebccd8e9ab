package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s and strips combining marks, so "Crème Brûlée"
// becomes "creme brulee".
func Normalize(s string) string {
	lower := strings.ToLower(s)
	// transform.Chain is stateful; build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, lower)
	if err != nil {
		return lower
	}
	return out
}

// words splits a normalized title on every rune that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchesTitle reports whether any word of title starts with the normalized query.
func matchesTitle(title, query string) bool {
	for _, w := range words(Normalize(title)) {
		if strings.HasPrefix(w, query) {
			return true
		}
	}
	return false
}
