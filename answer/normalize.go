/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package answer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minSubstringLen is the shortest text allowed to count as a substring match,
// so that "a" does not match every answer containing that letter.
const minSubstringLen = 3

// Normalize lowercases raw, folds accents, drops everything that is not a
// letter, digit or whitespace, and collapses whitespace runs to one space.
// The result has no leading or trailing space. Normalize is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// Chained transformers keep state, so each call builds its own.
	foldAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(foldAccents, strings.ToLower(raw))
	if err != nil {
		folded = strings.ToLower(raw)
	}

	kept := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, folded)

	// Dropping punctuation can leave conjoining jamo side by side, so
	// compose once more after the filter.
	return norm.NFC.String(strings.Join(strings.Fields(kept), " "))
}

// significantWords splits normalized text into words longer than two runes.
func significantWords(s string) []string {
	fields := strings.Fields(s)
	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minSubstringLen {
			words = append(words, f)
		}
	}
	return words
}

// pluralOf reports whether a and b are the same word, or one is the other
// with a trailing "s".
func pluralOf(a, b string) bool {
	return a == b || a+"s" == b || b+"s" == a
}

// sharesWord reports whether any significant word of a equals, or is a
// trailing-"s" plural of, any significant word of b.
func sharesWord(a, b string) bool {
	wordsB := significantWords(b)
	for _, wa := range significantWords(a) {
		for _, wb := range wordsB {
			if pluralOf(wa, wb) {
				return true
			}
		}
	}
	return false
}

// contains reports whether outer contains inner and inner is long enough to
// be meaningful on its own.
func contains(outer, inner string) bool {
	return utf8.RuneCountInString(inner) >= minSubstringLen && strings.Contains(outer, inner)
}
