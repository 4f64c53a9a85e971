// Package textnorm provides accent- and case-insensitive text matching for
// catalog searches. Product names in the system of record are Portuguese, so
// folding must treat "açúcar" and "ACUCAR" as the same word.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics via NFD normalization followed by
// removal of combining marks.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to the raw string.
		result = s
	}
	return strings.ToLower(result)
}

// ContainsFold reports whether substr occurs in s, ignoring case and accents.
// An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}
