package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"StockX/internal/domain/models"
)

// DefaultWindowSize is the number of past closes fed to the model.
const DefaultWindowSize = 60

// Preprocessor turns a close series into scaled training windows and back.
// It is stateless apart from the window size.
type Preprocessor struct {
	window int
}

func NewPreprocessor(window int) *Preprocessor {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &Preprocessor{window: window}
}

func (p *Preprocessor) WindowSize() int { return p.window }

// FitScale records the min and max of the full series. Training needs at
// least window+1 points so that one window and its target exist.
func (p *Preprocessor) FitScale(prices []float64) (models.ScalingParameters, error) {
	if len(prices) < p.window+1 {
		return models.ScalingParameters{}, models.InsufficientData("",
			fmt.Sprintf("need at least %d prices to train, got %d", p.window+1, len(prices)))
	}
	return models.ScalingParameters{Min: floats.Min(prices), Max: floats.Max(prices)}, nil
}

// Normalize maps prices into [0, 1] relative to params. Values outside the
// fitted range fall outside [0, 1]; that is expected at inference time.
func (p *Preprocessor) Normalize(prices []float64, params models.ScalingParameters) ([]float64, error) {
	if !(params.Max > params.Min) {
		return nil, models.DegenerateRange("", params.Min)
	}
	span := params.Max - params.Min
	out := make([]float64, len(prices))
	for i, v := range prices {
		out[i] = (v - params.Min) / span
	}
	return out, nil
}

// Denormalize is the exact inverse of Normalize for a single value.
func (p *Preprocessor) Denormalize(v float64, params models.ScalingParameters) float64 {
	return v*(params.Max-params.Min) + params.Min
}

// MakeWindows slides a window of size w with step 1. Window i holds
// normalized[i:i+w] and its target is normalized[i+w].
func (p *Preprocessor) MakeWindows(normalized []float64) ([][]float64, []float64, error) {
	w := p.window
	if len(normalized) <= w {
		return nil, nil, models.InsufficientData("",
			fmt.Sprintf("need more than %d points to build a window, got %d", w, len(normalized)))
	}
	n := len(normalized) - w
	windows := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		windows[i] = normalized[i : i+w : i+w]
		targets[i] = normalized[i+w]
	}
	return windows, targets, nil
}

// LatestWindow normalizes the most recent window of prices with params.
func (p *Preprocessor) LatestWindow(prices []float64, params models.ScalingParameters) ([]float64, error) {
	if len(prices) < p.window {
		return nil, models.InsufficientData("", "Not enough data for prediction")
	}
	return p.Normalize(prices[len(prices)-p.window:], params)
}
