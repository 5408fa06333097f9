package service

import (
	"context"

	"StockX/internal/domain/models"
)

// SentimentScorer maps free text to a polarity in [-1, 1]. Implementations
// are pure and return exactly 0 for empty input.
type SentimentScorer interface {
	Score(text string) float64
}

// ContentExtractor downloads the readable body of an article.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// SentimentSource produces the sentiment signal of a symbol. It never fails;
// upstream problems degrade to a neutral signal.
type SentimentSource interface {
	Signal(ctx context.Context, symbol string, windowDays int) models.SentimentSignal
}

// SymbolLocker serializes writers per symbol. The returned func releases
// the lock.
type SymbolLocker interface {
	Lock(ctx context.Context, symbol string) (func(), error)
}

// TrainDispatcher schedules a training run off the request path.
type TrainDispatcher interface {
	Dispatch(ctx context.Context, req models.TrainRequest) (string, error)
}
