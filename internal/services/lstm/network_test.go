package lstm

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockX/internal/domain/models"
)

func smallArch() models.Architecture {
	return models.Architecture{WindowSize: 5, Features: 1, LSTMUnits: []int{3, 2}, DenseUnits: []int{2}}
}

func sineWindows(points, window int) ([][]float64, []float64) {
	s := make([]float64, points)
	for i := range s {
		s[i] = 0.5 + 0.4*math.Sin(float64(i)/5)
	}
	var ws [][]float64
	var ts []float64
	for i := 0; i+window < len(s); i++ {
		ws = append(ws, s[i:i+window])
		ts = append(ts, s[i+window])
	}
	return ws, ts
}

func TestNetwork_ParamCountMatchesReference(t *testing.T) {
	n, err := New(Config{Architecture: DefaultArchitecture(), Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 31901, n.ParamCount())
}

func TestNetwork_GradientCheck(t *testing.T) {
	n, err := New(Config{Architecture: smallArch(), Seed: 1})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	window := make([]float64, 5)
	for i := range window {
		window[i] = rng.Float64()
	}
	const target = 0.3

	loss := func() float64 {
		y, _, err := n.forward(window)
		require.NoError(t, err)
		return (y - target) * (y - target)
	}

	n.zeroGrad()
	y, cache, err := n.forward(window)
	require.NoError(t, err)
	n.backward(cache, 2*(y-target))

	const h = 1e-6
	for _, p := range n.all {
		for i := range p.value {
			orig := p.value[i]
			p.value[i] = orig + h
			lp := loss()
			p.value[i] = orig - h
			lm := loss()
			p.value[i] = orig

			numeric := (lp - lm) / (2 * h)
			assert.InDelta(t, numeric, p.grad[i], 1e-6+1e-4*math.Abs(numeric), "%s[%d]", p.name, i)
		}
	}
}

func TestNetwork_PredictDeterministic(t *testing.T) {
	a, err := New(Config{Architecture: smallArch(), Seed: 9})
	require.NoError(t, err)
	b, err := New(Config{Architecture: smallArch(), Seed: 9})
	require.NoError(t, err)

	w := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	ya, err := a.Predict(w)
	require.NoError(t, err)
	yb, err := b.Predict(w)
	require.NoError(t, err)
	assert.Equal(t, ya, yb)

	again, err := a.Predict(w)
	require.NoError(t, err)
	assert.Equal(t, ya, again)
}

func TestNetwork_PredictRejectsWrongWindow(t *testing.T) {
	n, err := New(Config{Architecture: smallArch()})
	require.NoError(t, err)
	_, err = n.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestNetwork_FitReducesLoss(t *testing.T) {
	arch := models.Architecture{WindowSize: 8, Features: 1, LSTMUnits: []int{8}, DenseUnits: []int{4}}
	n, err := New(Config{Architecture: arch, LearningRate: 0.01, Seed: 42})
	require.NoError(t, err)

	ws, ts := sineWindows(200, 8)
	var seen []models.EpochStats
	hist, err := n.Fit(context.Background(), ws, ts, FitOptions{
		Epochs:             15,
		BatchSize:          16,
		ValidationFraction: 0.2,
		Shuffle:            true,
		OnEpoch:            func(s models.EpochStats) { seen = append(seen, s) },
	})
	require.NoError(t, err)
	require.Len(t, hist.Epochs, 15)
	assert.Equal(t, hist.Epochs, seen)
	assert.Less(t, hist.Last().Loss, hist.Epochs[0].Loss)
	assert.False(t, math.IsNaN(hist.Last().ValLoss))
}

func TestNetwork_FitIsReproducible(t *testing.T) {
	ws, ts := sineWindows(60, 5)
	run := func() *History {
		n, err := New(Config{Architecture: smallArch(), Seed: 5})
		require.NoError(t, err)
		h, err := n.Fit(context.Background(), ws, ts, FitOptions{Epochs: 3, BatchSize: 8, ValidationFraction: 0.2, Shuffle: true})
		require.NoError(t, err)
		return h
	}
	assert.Equal(t, run().Epochs, run().Epochs)
}

func TestValidationSplit(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		want     int
	}{
		{1, 0.2, 1},
		{4, 0.2, 4},
		{5, 0.2, 4},
		{10, 0.2, 8},
		{1000, 0.2, 800},
		{10, 0, 10},
		{3, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidationSplit(tt.n, tt.fraction), "n=%d fraction=%v", tt.n, tt.fraction)
	}
}

func TestNetwork_ValidationIsChronologicalTail(t *testing.T) {
	n, err := New(Config{Architecture: smallArch(), LearningRate: 1e-6, Seed: 2})
	require.NoError(t, err)

	ws := make([][]float64, 10)
	ts := make([]float64, 10)
	for i := range ws {
		ws[i] = []float64{0.5, 0.5, 0.5, 0.5, 0.5}
	}
	ts[8], ts[9] = 100, 100

	hist, err := n.Fit(context.Background(), ws, ts, FitOptions{Epochs: 1, BatchSize: 32, ValidationFraction: 0.2, Shuffle: true})
	require.NoError(t, err)
	assert.Equal(t, 8, hist.TrainSamples)
	assert.Equal(t, 2, hist.ValidateSamples)
	assert.Less(t, hist.Last().Loss, 50.0)
	assert.Greater(t, hist.Last().ValLoss, 1000.0)
}

func TestNetwork_FitSingleWindow(t *testing.T) {
	n, err := New(Config{Architecture: smallArch(), Seed: 1})
	require.NoError(t, err)
	hist, err := n.Fit(context.Background(), [][]float64{{0, 0.2, 0.4, 0.6, 0.8}}, []float64{1}, FitOptions{Epochs: 1, ValidationFraction: 0.2})
	require.NoError(t, err)
	assert.Equal(t, 1, hist.TrainSamples)
	assert.Equal(t, 0, hist.ValidateSamples)
}

func TestNetwork_FitHonoursCancellation(t *testing.T) {
	n, err := New(Config{Architecture: smallArch(), Seed: 1})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ws, ts := sineWindows(40, 5)
	_, err = n.Fit(ctx, ws, ts, FitOptions{Epochs: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNetwork_FitValidatesInput(t *testing.T) {
	n, err := New(Config{Architecture: smallArch()})
	require.NoError(t, err)

	_, err = n.Fit(context.Background(), nil, nil, FitOptions{Epochs: 1})
	assert.Error(t, err)
	_, err = n.Fit(context.Background(), [][]float64{{1, 2, 3, 4, 5}}, []float64{1, 2}, FitOptions{Epochs: 1})
	assert.Error(t, err)
	_, err = n.Fit(context.Background(), [][]float64{{1, 2, 3, 4, 5}}, []float64{1}, FitOptions{Epochs: 0})
	assert.Error(t, err)
}

func TestNew_RejectsBadArchitecture(t *testing.T) {
	_, err := New(Config{Architecture: models.Architecture{WindowSize: 60, Features: 1}})
	assert.Error(t, err)
	_, err = New(Config{Architecture: models.Architecture{WindowSize: 0, Features: 1, LSTMUnits: []int{4}}})
	assert.Error(t, err)
	_, err = New(Config{Architecture: models.Architecture{WindowSize: 3, Features: 1, LSTMUnits: []int{4, 0}}})
	assert.Error(t, err)
}
