package usecase

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/internal/repository"
	"StockX/internal/service/lock"
	"StockX/pkg/logger"

	"github.com/stretchr/testify/require"
)

// syntheticBars returns n daily bars of a trending sine wave.
func syntheticBars(n int) []models.PriceBar {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + 0.1*float64(i) + 5*math.Sin(float64(i)/7),
		}
	}
	return out
}

func constantBars(n int, v float64) []models.PriceBar {
	bars := syntheticBars(n)
	for i := range bars {
		bars[i].Close = v
	}
	return bars
}

type fakeFeed struct {
	mu    sync.Mutex
	bars  map[string][]models.PriceBar
	err   error
	delay time.Duration

	active, maxActive atomic.Int32
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{bars: map[string][]models.PriceBar{}}
}

func (f *fakeFeed) set(sym string, bars []models.PriceBar) {
	f.mu.Lock()
	f.bars[sym] = bars
	f.mu.Unlock()
}

func (f *fakeFeed) History(ctx context.Context, symbol string, _ domrepo.Period) ([]models.PriceBar, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[symbol], nil
}

type fakeSentiment struct {
	score float64
	delay time.Duration
}

func (f fakeSentiment) Signal(ctx context.Context, symbol string, windowDays int) models.SentimentSignal {
	sig := models.NeutralSignal(symbol, windowDays)
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return sig
	}
	sig.AveragePolarity = f.score
	sig.SampleCount = 1
	sig.Headlines = []string{"Apple beats estimates"}
	return sig
}

type memRecorder struct {
	mu   sync.Mutex
	rows []models.PredictionRecord
}

func (r *memRecorder) Record(_ context.Context, rec models.PredictionRecord) error {
	r.mu.Lock()
	r.rows = append(r.rows, rec)
	r.mu.Unlock()
	return nil
}

func (r *memRecorder) Recent(_ context.Context, symbol string, limit int) ([]models.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PredictionRecord
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].Symbol == symbol {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memRecorder) Close() error { return nil }

type memPublisher struct {
	mu          sync.Mutex
	training    []models.TrainingEvent
	predictions []models.PredictionEvent
}

func (p *memPublisher) PublishTraining(_ context.Context, ev models.TrainingEvent) error {
	p.mu.Lock()
	p.training = append(p.training, ev)
	p.mu.Unlock()
	return nil
}

func (p *memPublisher) PublishPrediction(_ context.Context, ev models.PredictionEvent) error {
	p.mu.Lock()
	p.predictions = append(p.predictions, ev)
	p.mu.Unlock()
	return nil
}

func (p *memPublisher) Close() error { return nil }

type fixture struct {
	svc       *PredictionService
	feed      *fakeFeed
	recorder  *memRecorder
	publisher *memPublisher
}

// smallConfig keeps the 60-step window but shrinks the layers so tests
// train in milliseconds.
func smallConfig() PredictionConfig {
	return PredictionConfig{
		Architecture: models.Architecture{
			WindowSize: 60,
			Features:   1,
			LSTMUnits:  []int{4, 4},
			DenseUnits: []int{3},
		},
		LearningRate:       0.001,
		Seed:               42,
		BatchSize:          32,
		ValidationFraction: 0.2,
		MaxEpochs:          50,
		LookbackDays:       120,
		PriceTimeout:       time.Second,
		HistoryTimeout:     time.Second,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := repository.NewFileArtifactStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	f := &fixture{feed: newFakeFeed(), recorder: &memRecorder{}, publisher: &memPublisher{}}
	f.svc = NewPredictionService(smallConfig(), f.feed, store, fakeSentiment{score: 0.4}, lock.New(),
		WithRecorder(f.recorder),
		WithPublisher(f.publisher),
	)
	return f
}
