package models

import (
	"time"

	"github.com/google/uuid"
)

// Prediction is the answer to a next-day close query.
type Prediction struct {
	Symbol            string  `json:"symbol"`
	LastActualPrice   float64 `json:"last_actual_price"`
	NextDayPrediction float64 `json:"next_day_prediction"`
	TrainingRange     string  `json:"training_range"`
}

// TrainDetails carries the summary of a finished training run.
type TrainDetails struct {
	Epochs        int     `json:"epochs"`
	Samples       int     `json:"samples"`
	Loss          float64 `json:"loss"`
	ValLoss       float64 `json:"val_loss"`
	TrainingRange string  `json:"training_range"`
	DurationMs    int64   `json:"duration_ms"`
}

type TrainResult struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details *TrainDetails `json:"details,omitempty"`
}

// Insight combines a prediction with the sentiment observed for the symbol.
type Insight struct {
	Symbol     string            `json:"symbol"`
	Prediction *Prediction       `json:"prediction"`
	Sentiment  SentimentSignal   `json:"sentiment"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// PredictionRecord is a row of the prediction ledger.
type PredictionRecord struct {
	ID                uuid.UUID `json:"id"`
	Symbol            string    `json:"symbol"`
	LastActualPrice   float64   `json:"last_actual_price"`
	NextDayPrediction float64   `json:"next_day_prediction"`
	ModelTrainedAt    time.Time `json:"model_trained_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewPredictionRecord stamps p with a fresh ID and the current time.
func NewPredictionRecord(p *Prediction, trainedAt time.Time) PredictionRecord {
	return PredictionRecord{
		ID:                uuid.New(),
		Symbol:            p.Symbol,
		LastActualPrice:   p.LastActualPrice,
		NextDayPrediction: p.NextDayPrediction,
		ModelTrainedAt:    trainedAt,
		CreatedAt:         time.Now().UTC(),
	}
}
