package models

import "time"

// Sources of a training request.
const (
	SourceHTTP      = "http"
	SourceQueue     = "queue"
	SourceKafka     = "kafka"
	SourceScheduler = "scheduler"
	SourceCLI       = "cli"
)

// TrainRequest is the payload carried by the job queue and the Kafka
// train-request topic.
type TrainRequest struct {
	JobID       string    `json:"job_id"`
	Symbol      string    `json:"symbol"`
	Epochs      int       `json:"epochs"`
	Source      string    `json:"source"`
	RequestedAt time.Time `json:"requested_at"`
}

// TrainingEvent is published once per finished (or failed) training run.
type TrainingEvent struct {
	Symbol     string    `json:"symbol"`
	Status     string    `json:"status"`
	Epochs     int       `json:"epochs"`
	Samples    int       `json:"samples"`
	Loss       float64   `json:"loss"`
	ValLoss    float64   `json:"val_loss"`
	Error      string    `json:"error,omitempty"`
	Source     string    `json:"source"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// PredictionEvent is published for every served prediction.
type PredictionEvent struct {
	Symbol            string    `json:"symbol"`
	LastActualPrice   float64   `json:"last_actual_price"`
	NextDayPrediction float64   `json:"next_day_prediction"`
	ModelTrainedAt    time.Time `json:"model_trained_at"`
	Timestamp         time.Time `json:"timestamp"`
}

// TrainingProgress is streamed to progress subscribers during a run.
type TrainingProgress struct {
	Symbol    string  `json:"symbol"`
	Epoch     int     `json:"epoch"`
	Epochs    int     `json:"epochs"`
	Loss      float64 `json:"loss"`
	ValLoss   float64 `json:"val_loss"`
	Done      bool    `json:"done"`
	Error     string  `json:"error,omitempty"`
	Timestamp int64   `json:"ts"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusQueued  = "queued"
)
