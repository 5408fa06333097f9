package sentiment

import (
	"fmt"

	"StockX/internal/domain/service"
)

const (
	KindLexicon  = "lexicon"
	KindPolarity = "polarity"
)

// New builds a scorer by name.
func New(kind string) (service.SentimentScorer, error) {
	switch kind {
	case "", KindLexicon:
		return NewLexiconScorer(nil), nil
	case KindPolarity:
		return NewPolarityScorer(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment scorer %q", kind)
	}
}
