package models

import "time"

// ScalingParameters are the min/max observed on a training series.
// Max > Min always holds for a valid value.
type ScalingParameters struct {
	Min float64 `json:"min" msgpack:"min"`
	Max float64 `json:"max" msgpack:"max"`
}

// Architecture fixes the layer sizes of a sequence model.
type Architecture struct {
	WindowSize int   `json:"window_size" msgpack:"window_size"`
	Features   int   `json:"features" msgpack:"features"`
	LSTMUnits  []int `json:"lstm_units" msgpack:"lstm_units"`
	DenseUnits []int `json:"dense_units" msgpack:"dense_units"`
}

// Tensor is a named row-major weight matrix. Vectors have Cols == 1.
type Tensor struct {
	Name string    `msgpack:"name"`
	Rows int       `msgpack:"rows"`
	Cols int       `msgpack:"cols"`
	Data []float64 `msgpack:"data"`
}

// ModelWeights is the full description needed to rebuild a network.
type ModelWeights struct {
	Architecture Architecture `msgpack:"architecture"`
	Tensors      []Tensor     `msgpack:"tensors"`
}

// DateRange is the span of bars a model was trained on.
type DateRange struct {
	From time.Time `json:"from" msgpack:"from"`
	To   time.Time `json:"to" msgpack:"to"`
}

// TrainedModel is the persisted artifact: weights plus the scaling that
// produced them. One exists per symbol and a retrain replaces it whole.
type TrainedModel struct {
	Symbol        string            `msgpack:"symbol"`
	Weights       ModelWeights      `msgpack:"weights"`
	Scaling       ScalingParameters `msgpack:"scaling"`
	TrainingRange DateRange         `msgpack:"training_range"`
	TrainedAt     time.Time         `msgpack:"trained_at"`
	Epochs        int               `msgpack:"epochs"`
	Samples       int               `msgpack:"samples"`
	Loss          float64           `msgpack:"loss"`
	ValLoss       float64           `msgpack:"val_loss"`
}

// TrainingRangeLabel renders the range the way the predict response shows it.
func (m *TrainedModel) TrainingRangeLabel() string {
	return "From " + m.TrainingRange.From.Format("2006-01-02") + " to present"
}

// EpochStats is reported after every training epoch.
type EpochStats struct {
	Epoch   int     `json:"epoch"`
	Loss    float64 `json:"loss"`
	ValLoss float64 `json:"val_loss"`
}
