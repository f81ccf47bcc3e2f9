package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics loại bỏ dấu (á, ñ, ü...) một cách an toàn.
// The chain is built per call: transform.Transformer values keep state.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold strips diacritics and lowercases.
func Fold(s string) string {
	return strings.ToLower(StripDiacritics(s))
}
