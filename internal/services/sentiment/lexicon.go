package sentiment

import (
	"math"
	"strings"

	"StockX/internal/domain/service"
)

const (
	boostIncr       = 0.293
	boostDecr       = -0.293
	capsIncr        = 0.733
	negationScalar  = -0.74
	exclaimIncr     = 0.292
	maxExclaims     = 4
	normalizeAlpha  = 15.0
	butBeforeWeight = 0.5
	butAfterWeight  = 1.5
)

// LexiconScorer is a rule-based compound scorer. It sums word valences,
// adjusted for boosters, negation, shouting and contrast ("but"), and maps
// the sum into [-1, 1] with x/sqrt(x²+alpha).
type LexiconScorer struct {
	words    map[string]float64
	boosters map[string]float64
}

var _ service.SentimentScorer = (*LexiconScorer)(nil)

// NewLexiconScorer returns a scorer over the built-in word list. extra
// entries override or extend it.
func NewLexiconScorer(extra map[string]float64) *LexiconScorer {
	words := make(map[string]float64, len(valence)+len(extra))
	for k, v := range valence {
		words[k] = v
	}
	for k, v := range extra {
		words[strings.ToLower(k)] = v
	}
	return &LexiconScorer{words: words, boosters: boosters}
}

func (s *LexiconScorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	shouting := mixedCase(tokens)

	scores := make([]float64, len(tokens))
	for i, t := range tokens {
		v, ok := s.words[t.key]
		if !ok || v == 0 {
			continue
		}
		if _, isBooster := s.boosters[t.key]; isBooster {
			continue
		}
		sign := math.Copysign(1, v)
		if shouting && isAllCaps(t.raw) {
			v += sign * capsIncr
		}
		for j := 1; j <= 3 && i-j >= 0; j++ {
			prev := tokens[i-j]
			if b, ok := s.boosters[prev.key]; ok {
				inc := b * sign
				if shouting && isAllCaps(prev.raw) {
					inc += capsIncr * sign
				}
				switch j {
				case 2:
					inc *= 0.95
				case 3:
					inc *= 0.9
				}
				v += inc
			}
			if isNegation(prev.key) {
				v *= negationScalar
			}
		}
		scores[i] = v
	}

	for i, t := range tokens {
		if t.key != "but" {
			continue
		}
		for j := range scores {
			switch {
			case j < i:
				scores[j] *= butBeforeWeight
			case j > i:
				scores[j] *= butAfterWeight
			}
		}
		break
	}

	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	ep := float64(min(strings.Count(text, "!"), maxExclaims)) * exclaimIncr
	if sum > 0 {
		sum += ep
	} else {
		sum -= ep
	}
	return clamp(sum / math.Sqrt(sum*sum+normalizeAlpha))
}
