/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package answer

// Similarity thresholds. These are tuned heuristics that games depend on;
// change them only alongside the games that use them.
const (
	DefaultThreshold   = 0.6
	CloseThreshold     = 0.7
	DuplicateThreshold = 0.8
)

// IsMatch reports whether user matches correct at DefaultThreshold.
func IsMatch(user, correct string) bool {
	return IsMatchThreshold(user, correct, DefaultThreshold)
}

// IsMatchThreshold reports whether user matches correct. After normalizing
// both, it accepts an exact match, a substring either way of at least three
// runes, a shared significant word (plurals by trailing "s" included), or an
// edit-distance similarity of at least threshold.
func IsMatchThreshold(user, correct string, threshold float64) bool {
	u, c := Normalize(user), Normalize(correct)
	if u == "" || c == "" {
		return false
	}

	if u == c || contains(c, u) || contains(u, c) {
		return true
	}

	if sharesWord(u, c) {
		return true
	}

	return Similarity(u, c) >= threshold
}

// IsDuplicate reports whether two answers from the same round should count
// as one, either identical after normalization or within DuplicateThreshold.
func IsDuplicate(first, second string) bool {
	a, b := Normalize(first), Normalize(second)
	if a == "" || b == "" {
		return false
	}

	return a == b || Similarity(a, b) >= DuplicateThreshold
}
