package models

// Requests for the HTTP endpoints. Path parameters are bound with `param`.

// TrainRequestHTTP leaves the epoch ceiling to the service, which enforces
// the configured model.max_epochs for sync and queued training alike.
type TrainRequestHTTP struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
	Epochs int    `query:"epochs" json:"epochs" default:"10" validate:"gte=1"`
	Async  bool   `query:"async" json:"async"`
}

type SymbolRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
}

type SentimentRequest struct {
	Symbol     string `param:"symbol" json:"symbol" validate:"required,ticker"`
	WindowDays int    `query:"window_days" json:"window_days" default:"10" validate:"gte=1,lte=30"`
}

type HistoryRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
	Range  string `query:"range" json:"range" default:"6mo" validate:"required"`
}

type QuotesRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
}

type PredictionsRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}

// Responses.

type QueuedTrainResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type ModelsResponse struct {
	TrainedModels []string `json:"trained_models"`
}

type RootResponse struct {
	Message string `json:"message"`
}
