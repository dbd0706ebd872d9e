package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		answer    string
		candidate string
		want      Match
	}{
		{"to take", "to take", MatchEqual},
		{"to tak", "to take", MatchAlmost},
		{"ot take", "to take", MatchAlmost},
		{"one", "ono", MatchNone},
		{"fire", "fir", MatchNone},
		{"water", "watr", MatchAlmost},
		{"six", "nine", MatchNone},
		{"6", "9", MatchNone},
		{"60", "06", MatchNone},
		{"", "one", MatchNone},
		{"international", "internatoinal", MatchAlmost},
	}

	for _, tt := range tests {
		t.Run(tt.answer+"/"+tt.candidate, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.answer, tt.candidate))
		})
	}
}

func TestDigitsDiffer(t *testing.T) {
	assert.False(t, DigitsDiffer("one", "two"))
	assert.False(t, DigitsDiffer("10 days", "10 dayz"))
	assert.True(t, DigitsDiffer("6", "9"))
	assert.True(t, DigitsDiffer("60", "06"))
	assert.True(t, DigitsDiffer("1 thing", "thing"))
	assert.True(t, DigitsDiffer("1 2", "12"))
}

func TestAllowedEdits(t *testing.T) {
	assert.Equal(t, 0, AllowedEdits(3))
	assert.Equal(t, 1, AllowedEdits(4))
	assert.Equal(t, 1, AllowedEdits(5))
	assert.Equal(t, 2, AllowedEdits(7))
	assert.Equal(t, 2, AllowedEdits(13))
	assert.Equal(t, 3, AllowedEdits(14))
}

func TestMatchString(t *testing.T) {
	assert.Equal(t, "equal", MatchEqual.String())
	assert.Equal(t, "almost", MatchAlmost.String())
	assert.Equal(t, "none", MatchNone.String())
}
