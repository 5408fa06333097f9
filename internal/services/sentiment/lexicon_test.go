package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconScorer_EmptyIsNeutral(t *testing.T) {
	s := NewLexiconScorer(nil)
	for _, in := range []string{"", "   ", "\n\t", "!!!", "neutral statement"} {
		assert.Equal(t, 0.0, s.Score(in), "input %q", in)
	}
}

func TestLexiconScorer_Direction(t *testing.T) {
	s := NewLexiconScorer(nil)

	assert.Greater(t, s.Score("great news"), 0.0)
	assert.Less(t, s.Score("bad news"), 0.0)
	assert.Less(t, s.Score("Shares plunge after earnings miss"), 0.0)
	assert.Greater(t, s.Score("Apple beats estimates, stock surges to record"), 0.0)
}

func TestLexiconScorer_Compound(t *testing.T) {
	s := NewLexiconScorer(nil)
	// single word of valence 3.1: 3.1 / sqrt(3.1^2 + 15)
	assert.InDelta(t, 0.62487, s.Score("great news"), 1e-4)
}

func TestLexiconScorer_Modifiers(t *testing.T) {
	s := NewLexiconScorer(nil)

	good := s.Score("good")
	assert.Less(t, s.Score("not good"), 0.0, "negation flips")
	assert.Less(t, s.Score("isn't good"), 0.0, "contraction negates")
	assert.Greater(t, s.Score("very good"), good, "booster increases")
	assert.Less(t, s.Score("slightly good"), good, "dampener decreases")
	assert.Greater(t, s.Score("good!!!"), good, "exclamation emphasis")
	assert.Greater(t, s.Score("results were GOOD today"), s.Score("results were good today"), "caps emphasis")
	assert.Greater(t, s.Score("bad start but great finish"), 0.0, "clause after but dominates")
}

func TestLexiconScorer_Bounded(t *testing.T) {
	s := NewLexiconScorer(nil)
	pos := "great excellent amazing awesome best win success strong profit surge soar rally!!!!!!"
	neg := "terrible awful horrible worst crash fraud bankruptcy crisis recession collapse!!!!"

	p := s.Score(pos)
	n := s.Score(neg)
	assert.LessOrEqual(t, p, 1.0)
	assert.Greater(t, p, 0.9)
	assert.GreaterOrEqual(t, n, -1.0)
	assert.Less(t, n, -0.9)
}

func TestLexiconScorer_Deterministic(t *testing.T) {
	s := NewLexiconScorer(nil)
	text := "Tesla shares tumble as deliveries disappoint, but analysts stay optimistic"
	first := s.Score(text)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, s.Score(text))
	}
}

func TestLexiconScorer_ExtraWords(t *testing.T) {
	s := NewLexiconScorer(map[string]float64{"Moonshot": 3.0})
	assert.Greater(t, s.Score("a moonshot quarter"), 0.0)
}

func TestNew(t *testing.T) {
	s, err := New("lexicon")
	require.NoError(t, err)
	assert.IsType(t, &LexiconScorer{}, s)

	s, err = New("polarity")
	require.NoError(t, err)
	assert.IsType(t, &PolarityScorer{}, s)

	_, err = New("nope")
	assert.Error(t, err)
}
