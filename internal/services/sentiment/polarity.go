package sentiment

import (
	"strings"

	"StockX/internal/domain/service"
)

// intensifiers multiply the polarity of the next polar word.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "highly": 1.3, "incredibly": 1.5,
	"so": 1.2, "too": 1.2, "most": 1.3, "totally": 1.4, "slightly": 0.6,
	"somewhat": 0.7, "barely": 0.5, "hardly": 0.5, "little": 0.7,
}

// PolarityScorer averages the polarity of every polar word in the text.
// Word polarity is the shared valence scaled to [-1, 1]; a preceding
// intensifier multiplies it and a preceding negation flips and halves it.
type PolarityScorer struct {
	words map[string]float64
}

var _ service.SentimentScorer = (*PolarityScorer)(nil)

func NewPolarityScorer() *PolarityScorer {
	words := make(map[string]float64, len(valence))
	for k, v := range valence {
		words[k] = v / 4
	}
	return &PolarityScorer{words: words}
}

func (s *PolarityScorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	tokens := tokenize(text)

	var sum float64
	var n int
	for i, t := range tokens {
		p, ok := s.words[t.key]
		if !ok {
			continue
		}
		if i > 0 {
			prev := tokens[i-1].key
			if m, ok := intensifiers[prev]; ok {
				p *= m
				if i > 1 && isNegation(tokens[i-2].key) {
					p *= -0.5
				}
			} else if isNegation(prev) {
				p *= -0.5
			}
		}
		sum += clamp(p)
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / float64(n))
}
