package features

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockX/internal/domain/models"
)

func series(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestPreprocessor_RoundTrip(t *testing.T) {
	p := NewPreprocessor(60)
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		prices := make([]float64, 61+rng.Intn(300))
		for i := range prices {
			prices[i] = 1 + rng.Float64()*1000
		}
		params, err := p.FitScale(prices)
		require.NoError(t, err)

		norm, err := p.Normalize(prices, params)
		require.NoError(t, err)
		for i, v := range norm {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			assert.InDelta(t, prices[i], p.Denormalize(v, params), 1e-9)
		}
	}
}

func TestPreprocessor_WindowCount(t *testing.T) {
	for _, tc := range []struct{ length, window int }{{61, 60}, {100, 60}, {250, 60}, {10, 3}} {
		p := NewPreprocessor(tc.window)
		windows, targets, err := p.MakeWindows(series(tc.length, 0, 0.01))
		require.NoError(t, err)
		require.Len(t, windows, tc.length-tc.window)
		require.Len(t, targets, tc.length-tc.window)
		for _, w := range windows {
			assert.Len(t, w, tc.window)
		}
	}
}

func TestPreprocessor_WindowContents(t *testing.T) {
	p := NewPreprocessor(3)
	norm := []float64{0, 0.1, 0.2, 0.3, 0.4}
	windows, targets, err := p.MakeWindows(norm)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0.1, 0.2}, {0.1, 0.2, 0.3}}, windows)
	assert.Equal(t, []float64{0.3, 0.4}, targets)

	// windows must not alias beyond their length
	windows[0] = append(windows[0], 99)
	assert.Equal(t, 0.3, norm[3])
}

func TestPreprocessor_InsufficientData(t *testing.T) {
	p := NewPreprocessor(60)

	_, err := p.FitScale(series(59, 100, 1))
	require.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = p.FitScale(series(60, 100, 1))
	require.ErrorIs(t, err, models.ErrInsufficientData)

	_, _, err = p.MakeWindows(series(60, 0, 0.01))
	require.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = p.LatestWindow(series(59, 100, 1), models.ScalingParameters{Min: 100, Max: 200})
	require.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Contains(t, err.Error(), "Not enough data for prediction")
}

func TestPreprocessor_MinimumTrainingSeries(t *testing.T) {
	p := NewPreprocessor(60)
	prices := series(61, 100, 1)

	params, err := p.FitScale(prices)
	require.NoError(t, err)
	norm, err := p.Normalize(prices, params)
	require.NoError(t, err)
	windows, targets, err := p.MakeWindows(norm)
	require.NoError(t, err)
	assert.Len(t, windows, 1)
	assert.InDelta(t, 1.0, targets[0], 1e-12)
}

func TestPreprocessor_DegenerateRange(t *testing.T) {
	p := NewPreprocessor(60)
	flat := make([]float64, 100)
	for i := range flat {
		flat[i] = 100
	}
	params, err := p.FitScale(flat)
	require.NoError(t, err)

	_, err = p.Normalize(flat, params)
	require.ErrorIs(t, err, models.ErrDegenerateRange)
	assert.Equal(t, models.KindDegenerateRange, models.KindOf(err))
}

func TestPreprocessor_LatestWindow(t *testing.T) {
	p := NewPreprocessor(60)
	prices := series(80, 100, 1)
	params := models.ScalingParameters{Min: 100, Max: 179}

	w, err := p.LatestWindow(prices, params)
	require.NoError(t, err)
	require.Len(t, w, 60)
	assert.InDelta(t, 20.0/79.0, w[0], 1e-12)
	assert.InDelta(t, 1.0, w[59], 1e-12)
}

func TestRealizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, RealizedVolatility([]float64{0.01}, 20, TradingDaysPerYear))

	flat := make([]float64, 30)
	assert.Equal(t, 0.0, RealizedVolatility(flat, 20, TradingDaysPerYear))

	alt := make([]float64, 20)
	for i := range alt {
		alt[i] = 0.01
		if i%2 == 1 {
			alt[i] = -0.01
		}
	}
	v := RealizedVolatility(alt, 20, TradingDaysPerYear)
	assert.Greater(t, v, 0.0)
	assert.False(t, math.IsNaN(v))
}
