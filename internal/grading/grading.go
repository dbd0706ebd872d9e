// Package grading classifies a learner's free-text answer against a subject's
// accepted readings and meanings.
//
// Every function here is pure and safe for concurrent use.
package grading

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/kanjisync/kanjisync/internal/subject"
)

// Status is the outcome of grading one answer.
type Status string

const (
	StatusCorrect         Status = "correct"
	StatusCorrectWithHint Status = "correct_with_hint"
	StatusIncorrect       Status = "incorrect"
	StatusHint            Status = "hint"
)

// AlmostHint is shown when a meaning was accepted despite a small typo.
const AlmostHint = "Close enough! Double-check your spelling."

// Result is a graded answer. It is never persisted.
type Result struct {
	Status Status `json:"status"`
	Hint   string `json:"hint,omitempty"`
}

func (r Result) IsCorrect() bool {
	return r.Status == StatusCorrect || r.Status == StatusCorrectWithHint
}

// GradeReading matches the answer exactly against the subject's readings.
// The reading type (onyomi, kunyomi) is not compared to what the quiz asked for.
func GradeReading(answer string, s subject.Subject) Result {
	if !subject.HasReading(s) {
		precondition(fmt.Sprintf("reading graded on %s subject %d", s.Kind, s.ID))
		return Result{Status: StatusIncorrect}
	}

	for _, r := range subject.Readings(s) {
		if r.Reading != answer {
			continue
		}
		if !r.AcceptedAnswer {
			return Result{Status: StatusIncorrect}
		}
		return Result{Status: StatusCorrect}
	}
	return Result{Status: StatusIncorrect}
}

// GradeMeaning compares the normalized answer against accepted meanings and
// whitelisted auxiliary meanings. Blacklisted auxiliary meanings are not consulted.
func GradeMeaning(answer string, s subject.Subject) Result {
	normalized := Normalize(answer)

	best := MatchNone
	for _, candidate := range subject.AcceptedMeanings(s) {
		if m := Compare(normalized, Normalize(candidate)); m > best {
			best = m
		}
		if best == MatchEqual {
			break
		}
	}

	switch best {
	case MatchEqual:
		return Result{Status: StatusCorrect}
	case MatchAlmost:
		return Result{Status: StatusCorrectWithHint, Hint: AlmostHint}
	default:
		return Result{Status: StatusIncorrect}
	}
}

// Normalize folds full-width letters and digits to ASCII, trims surrounding
// whitespace and lowercases.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(width.Fold.String(s)))
}
