// Package textnorm canonicalizes free-text titles for comparison and cache
// key derivation. Matching quality and cache hit rates both depend on this
// exact behavior, so changes here invalidate previously written cache keys.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters (NFKD) and removes the combining
// marks, so "Pokémon" and "Pokemon" normalize identically.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes accents to their base characters, collapses every run
// of non-alphanumeric characters into a single space, trims, and lowercases.
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized string into its whitespace-delimited tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
