/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package answer

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// LevenshteinDistance returns the number of single-rune insertions, deletions
// and substitutions needed to turn a into b. Inputs are compared literally;
// callers normalize first.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	return edlib.LevenshteinDistance(a, b)
}

// Similarity scores a and b in [0,1] as one minus their edit distance over
// the longer length. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(longest)
}
