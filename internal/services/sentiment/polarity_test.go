package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarityScorer(t *testing.T) {
	s := NewPolarityScorer()

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"no polar words", "the company held a meeting", 0},
		{"single positive", "great news", 3.1 / 4},
		{"negated", "not good", 1.9 / 4 * -0.5},
		{"intensified", "very good", 1.9 / 4 * 1.3},
		{"average", "good bad", (1.9/4 - 2.5/4) / 2},
		{"negated intensifier", "not very good", 1.9 / 4 * 1.3 * -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.in), 1e-9)
		})
	}
}

func TestPolarityScorer_Clamped(t *testing.T) {
	s := NewPolarityScorer()
	v := s.Score("extremely best extremely best")
	assert.LessOrEqual(t, v, 1.0)
	assert.GreaterOrEqual(t, s.Score("extremely worst"), -1.0)
}
