package core

import (
	"strings"
	"unicode"
)

// Display collapses a raw free-text field to its canonical display form:
// leading/trailing whitespace trimmed and internal whitespace runs reduced
// to a single space. Case and punctuation are preserved.
func Display(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Key reduces a raw free-text field to its comparison key: full-width
// characters folded to half-width, everything lowercased, whitespace and
// punctuation dropped. "M&A Deal" and "m&a　  deal" share one key, so
// near-duplicate category spellings merge into a single bucket.
func Key(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		r = foldWidth(r)
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FieldsMatch reports whether two raw strings normalize to the same key.
func FieldsMatch(a, b string) bool {
	return Key(a) == Key(b)
}

// foldWidth maps full-width ASCII variants and the ideographic space to
// their half-width counterparts.
func foldWidth(r rune) rune {
	switch {
	case r == '　':
		return ' '
	case r >= '！' && r <= '～':
		return r - 0xFEE0
	}
	return r
}
