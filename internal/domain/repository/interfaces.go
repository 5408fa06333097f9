package repository

import (
	"context"
	"time"

	"StockX/internal/domain/models"
)

// PriceFeed returns daily bars sorted by date with no duplicates. An unknown
// symbol yields an empty slice and a nil error.
type PriceFeed interface {
	History(ctx context.Context, symbol string, period Period) ([]models.PriceBar, error)
}

// NewsFeed searches news articles for a query window.
type NewsFeed interface {
	Search(ctx context.Context, q models.NewsQuery) ([]models.Article, error)
}

// ArtifactStore persists one trained model per symbol. Get returns a
// ModelNotFound error for absent symbols and CorruptArtifact for unreadable
// ones.
type ArtifactStore interface {
	Put(ctx context.Context, m *models.TrainedModel) error
	Get(ctx context.Context, symbol string) (*models.TrainedModel, error)
	List(ctx context.Context) ([]string, error)
}

// PredictionRecorder is the append-only ledger of served predictions.
type PredictionRecorder interface {
	Record(ctx context.Context, rec models.PredictionRecord) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.PredictionRecord, error)
	Close() error
}

// EventPublisher fans out domain events to external systems.
type EventPublisher interface {
	PublishTraining(ctx context.Context, ev models.TrainingEvent) error
	PublishPrediction(ctx context.Context, ev models.PredictionEvent) error
	Close() error
}

// ProgressSink receives training progress updates.
type ProgressSink interface {
	Publish(p models.TrainingProgress)
}

type Metrics interface {
	RecordOperation(op, status string, d time.Duration)
	RecordError(kind string)
	RecordPrediction(symbol string, lastActual, predicted float64)
	RecordTraining(symbol string, loss, valLoss float64, samples int)
	RecordSentiment(symbol string, score float64, samples int)
}
