package grading

import (
	"regexp"
	"slices"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// Match is the result of a threshold comparison. Higher is better.
type Match int

const (
	MatchNone Match = iota
	MatchAlmost
	MatchEqual
)

func (m Match) String() string {
	switch m {
	case MatchEqual:
		return "equal"
	case MatchAlmost:
		return "almost"
	default:
		return "none"
	}
}

var digitRun = regexp.MustCompile(`\d+`)

// Compare classifies an already normalized answer against one candidate.
// When the digit sequences of the two strings differ, only exact equality counts.
func Compare(answer, candidate string) Match {
	if answer == candidate {
		return MatchEqual
	}
	if answer == "" || candidate == "" {
		return MatchNone
	}
	if DigitsDiffer(answer, candidate) {
		return MatchNone
	}

	if levenshtein.Distance(answer, candidate, nil) <= AllowedEdits(utf8.RuneCountInString(candidate)) {
		return MatchAlmost
	}
	return MatchNone
}

// DigitsDiffer reports whether either string contains digits and their digit
// sequences are not identical, in order. Only ASCII digits count, so inputs
// should go through Normalize first.
func DigitsDiffer(a, b string) bool {
	da := digitRun.FindAllString(a, -1)
	db := digitRun.FindAllString(b, -1)
	if len(da) == 0 && len(db) == 0 {
		return false
	}
	return !slices.Equal(da, db)
}

// AllowedEdits is the edit budget for a near miss on a candidate of n runes.
func AllowedEdits(n int) int {
	switch {
	case n <= 3:
		return 0
	case n <= 5:
		return 1
	case n <= 7:
		return 2
	default:
		return 2 + (n-7)/7
	}
}
