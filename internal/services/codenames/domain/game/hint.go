package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHint trims and NFC-normalizes a hint word.
func NormalizeHint(word string) string {
	return norm.NFC.String(strings.TrimSpace(word))
}

// foldWord returns the caseless form used to compare hints with board words.
// A Caser is stateful, so each call builds its own.
func foldWord(word string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(word)))
}

// validateHint checks a normalized hint against the board. It returns a
// rejection message, or "" when the hint is acceptable.
func validateHint(state State, word string, num int) string {
	if word == "" {
		return "hint word is required"
	}
	if num < 0 {
		return "hint number must not be negative"
	}
	folded := foldWord(word)
	for _, w := range state.ActiveWords() {
		if foldWord(w.Value) == folded {
			return "hint must not be a word on the board"
		}
	}
	return ""
}
