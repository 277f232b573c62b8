/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package answer

import (
	"bytes"
	"fmt"
)

// Confidence is how strongly a guess matched a candidate. Tiers rank
// Exact > Partial > Close; the zero value means no match.
type Confidence string

const (
	None    Confidence = ""
	Exact   Confidence = "exact"
	Partial Confidence = "partial"
	Close   Confidence = "close"
)

// MarshalJSON encodes None as null.
func (c Confidence) MarshalJSON() ([]byte, error) {
	if c == None {
		return []byte("null"), nil
	}
	return []byte(`"` + string(c) + `"`), nil
}

// UnmarshalJSON accepts null, "" (both None) or one of the tier names.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = None
		return nil
	}

	switch v := Confidence(bytes.Trim(data, `"`)); v {
	case None, Exact, Partial, Close:
		*c = v
		return nil
	default:
		return fmt.Errorf("unknown confidence %s", data)
	}
}

// Answer is a known-correct answer. Revealed answers have already been
// consumed and never match again.
type Answer struct {
	Text     string   `json:"text"`
	Aliases  []string `json:"aliases,omitempty"`
	Revealed bool     `json:"revealed"`
}

// MatchResult is the outcome of FindMatch. Index is -1 when nothing matched.
type MatchResult struct {
	Matched    bool       `json:"matched"`
	Index      int        `json:"answer_index"`
	Confidence Confidence `json:"confidence"`
}

var noMatch = MatchResult{Index: -1}

func matched(i int, c Confidence) MatchResult {
	return MatchResult{Matched: true, Index: i, Confidence: c}
}

// FindMatch returns the first unrevealed answer that user matches.
//
// The first pass scans answers in order for an exact or partial match. Only
// when no answer qualifies does a second pass accept typos: an edit-distance
// similarity of at least CloseThreshold against an answer's text or any of
// its aliases.
func FindMatch(user string, answers []Answer) MatchResult {
	u := Normalize(user)
	if u == "" {
		return noMatch
	}

	texts := make([]string, len(answers))
	for i, a := range answers {
		if a.Revealed {
			continue
		}
		texts[i] = Normalize(a.Text)
	}

	for i, a := range answers {
		c := texts[i]
		if c == "" {
			continue
		}

		if u == c {
			return matched(i, Exact)
		}

		for _, alias := range a.Aliases {
			if aliasMatches(u, Normalize(alias)) {
				return matched(i, Exact)
			}
		}

		if contains(c, u) || sharesWord(u, c) {
			return matched(i, Partial)
		}
	}

	for i, a := range answers {
		c := texts[i]
		if c == "" {
			continue
		}

		if Similarity(u, c) >= CloseThreshold {
			return matched(i, Close)
		}

		for _, alias := range a.Aliases {
			if n := Normalize(alias); n != "" && Similarity(u, n) >= CloseThreshold {
				return matched(i, Close)
			}
		}
	}

	return noMatch
}

func aliasMatches(u, alias string) bool {
	if alias == "" {
		return false
	}
	return u == alias || contains(alias, u) || contains(u, alias) || pluralOf(u, alias)
}
