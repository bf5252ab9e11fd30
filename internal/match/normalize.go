// Package match finds menu items, modifiers and yes/no answers in free text.
package match

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s and trims surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens splits normalized text into words, treating anything other than
// letters, digits and apostrophes as a separator.
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// padded joins tokens so that phrase lookups can use " phrase " and only
// match on word boundaries.
func padded(tokens []string) string {
	return " " + strings.Join(tokens, " ") + " "
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
func containsPhrase(text, phrase string) bool {
	return strings.Contains(text, padded(Tokens(phrase)))
}

// phraseIndex returns the byte offset of phrase in text or -1.
func phraseIndex(text, phrase string) int {
	return strings.Index(text, padded(Tokens(phrase)))
}
