// Package textnorm canonicalizes text before cross-source comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC normalization, strips control characters, and
// collapses all whitespace runs to single spaces. Distinct glyphs that
// NFKC does not unify (currency signs, for example) stay distinct.
func Normalize(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, normed)
	return strings.Join(strings.Fields(normed), " ")
}

// Fold lowercases after normalization, for case-insensitive comparison
func Fold(text string) string {
	return strings.ToLower(Normalize(text))
}

// Tokens splits normalized text into comparison tokens
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
