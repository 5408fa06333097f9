package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"StockX/internal/domain/models"
	"StockX/internal/service/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	sym, err := NormalizeSymbol("  brk.b ")
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", sym)

	_, err = NormalizeSymbol("^GSPC")
	assert.NoError(t, err)

	for _, bad := range []string{"", "   ", "../etc", "A B", "TOOLONGSYMBOLNAMEXXXXXX"} {
		_, err := NormalizeSymbol(bad)
		assert.ErrorIs(t, err, models.ErrInvalidArgument, bad)
	}
}

func TestPredict_BeforeTrain(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(200))

	_, err := f.svc.Predict(context.Background(), "AAPL")
	assert.ErrorIs(t, err, models.ErrModelNotFound)
}

func TestTrain_TooFewBars(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(59))

	_, err := f.svc.Train(context.Background(), "AAPL", 1)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	var e *models.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "AAPL", e.Symbol)
}

func TestTrain_ConstantSeries(t *testing.T) {
	f := newFixture(t)
	f.feed.set("FLAT", constantBars(100, 42))

	_, err := f.svc.Train(context.Background(), "FLAT", 1)
	assert.ErrorIs(t, err, models.ErrDegenerateRange)
}

func TestTrain_UnknownSymbol(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Train(context.Background(), "ZZZZ", 1)
	assert.ErrorIs(t, err, models.ErrSymbolNotFound)

	f.feed.err = errors.New("upstream down")
	_, err = f.svc.Train(context.Background(), "AAPL", 1)
	assert.ErrorIs(t, err, models.ErrSymbolNotFound)
}

func TestTrain_InvalidEpochs(t *testing.T) {
	f := newFixture(t)
	for _, e := range []int{0, -1, 51} {
		_, err := f.svc.Train(context.Background(), "AAPL", e)
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	}
}

func TestTrainThenPredict_MinimalSeries(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(61))
	ctx := context.Background()

	res, err := f.svc.Train(ctx, "aapl", 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "Model for AAPL trained successfully.", res.Message)
	require.NotNil(t, res.Details)
	assert.Equal(t, 1, res.Details.Samples)
	assert.Equal(t, "From 2020-01-01 to present", res.Details.TrainingRange)

	p1, err := f.svc.Predict(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p1.NextDayPrediction) || math.IsInf(p1.NextDayPrediction, 0))
	assert.Equal(t, math.Round(syntheticBars(61)[60].Close*100)/100, p1.LastActualPrice)

	p2, err := f.svc.Predict(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, p1.NextDayPrediction, p2.NextDayPrediction)

	assert.Len(t, f.recorder.rows, 2)
	assert.Len(t, f.publisher.predictions, 2)
	require.Len(t, f.publisher.training, 1)
	assert.Equal(t, models.StatusSuccess, f.publisher.training[0].Status)
	assert.Equal(t, models.SourceHTTP, f.publisher.training[0].Source)
}

func TestPredict_NotEnoughRecentBars(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(120))
	_, err := f.svc.Train(context.Background(), "AAPL", 1)
	require.NoError(t, err)

	f.feed.set("AAPL", syntheticBars(30))
	_, err = f.svc.Predict(context.Background(), "AAPL")
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestTrain_FailureIsPublished(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(10))

	_, err := f.svc.Train(context.Background(), "AAPL", 1)
	require.Error(t, err)
	require.Len(t, f.publisher.training, 1)
	assert.Equal(t, models.StatusFailed, f.publisher.training[0].Status)
	assert.NotEmpty(t, f.publisher.training[0].Error)
}

func TestTrain_StreamsProgress(t *testing.T) {
	f := newFixture(t)
	hub := progress.NewHub()
	f.svc.progress = hub
	f.feed.set("AAPL", syntheticBars(100))

	updates, unsubscribe := hub.Subscribe("AAPL")
	defer unsubscribe()

	_, err := f.svc.Train(context.Background(), "AAPL", 2)
	require.NoError(t, err)

	var got []models.TrainingProgress
	timeout := time.After(time.Second)
	for len(got) < 3 {
		select {
		case p := <-updates:
			got = append(got, p)
		case <-timeout:
			t.Fatalf("received %d progress updates", len(got))
		}
	}
	assert.Equal(t, 1, got[0].Epoch)
	assert.Equal(t, 2, got[1].Epoch)
	assert.True(t, got[2].Done)
}

func TestTrain_SameSymbolNeverOverlaps(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(80))
	f.feed.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Train(context.Background(), "AAPL", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, f.feed.maxActive.Load())
}

func TestSentiment(t *testing.T) {
	f := newFixture(t)

	sig, err := f.svc.Sentiment(context.Background(), "aapl", 10)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sig.Symbol)
	assert.Equal(t, 0.4, sig.AveragePolarity)

	_, err = f.svc.Sentiment(context.Background(), "AAPL", 0)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestInsight(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(100))

	_, err := f.svc.Insight(context.Background(), "AAPL", 10)
	assert.ErrorIs(t, err, models.ErrModelNotFound)

	_, err = f.svc.Train(context.Background(), "AAPL", 1)
	require.NoError(t, err)

	in, err := f.svc.Insight(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.NotNil(t, in.Prediction)
	assert.Equal(t, 0.4, in.Sentiment.AveragePolarity)
}

func TestInsight_SentimentTimeoutIsNeutral(t *testing.T) {
	f := newFixture(t)
	f.feed.set("AAPL", syntheticBars(100))
	_, err := f.svc.Train(context.Background(), "AAPL", 1)
	require.NoError(t, err)
	f.svc.sentiment = fakeSentiment{score: 0.9, delay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	in, err := f.svc.Insight(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Zero(t, in.Sentiment.AveragePolarity)
}

func TestListModelsAndRecentPredictions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	syms, err := f.svc.ListModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, syms)

	f.feed.set("MSFT", syntheticBars(90))
	_, err = f.svc.Train(ctx, "MSFT", 1)
	require.NoError(t, err)
	_, err = f.svc.Predict(ctx, "MSFT")
	require.NoError(t, err)

	syms, err = f.svc.ListModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, syms)

	rows, err := f.svc.RecentPredictions(ctx, "msft", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.svc.RecentPredictions(ctx, "MSFT", 1000)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}
