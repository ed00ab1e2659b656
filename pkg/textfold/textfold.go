package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the Unicode case-folded form of s, suitable for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Key folds case, strips diacritics and collapses inner whitespace, so that
// "NÃO  confirmada" and "nao confirmada" share a key.
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(Fold(stripped)), " ")
}
