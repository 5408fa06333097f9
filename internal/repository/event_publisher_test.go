package repository

import (
	"context"
	"errors"
	"testing"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMsg struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	sent   []sentMsg
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.sent = append(f.sent, sentMsg{topic: topic, key: string(key), value: value})
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

type failingPublisher struct{ NopEventPublisher }

func (failingPublisher) PublishTraining(context.Context, models.TrainingEvent) error {
	return errors.New("sink down")
}

func TestKafkaEventPublisher_Topics(t *testing.T) {
	prod := &fakeProducer{}
	p := NewKafkaEventPublisher(prod, "stockx.training", "stockx.predictions")
	ctx := context.Background()

	require.NoError(t, p.PublishTraining(ctx, models.TrainingEvent{Symbol: "AAPL"}))
	require.NoError(t, p.PublishPrediction(ctx, models.PredictionEvent{Symbol: "MSFT"}))
	require.Len(t, prod.sent, 2)
	assert.Equal(t, sentMsg{topic: "stockx.training", key: "AAPL", value: models.TrainingEvent{Symbol: "AAPL"}}, prod.sent[0])
	assert.Equal(t, "stockx.predictions", prod.sent[1].topic)
	assert.Equal(t, "MSFT", prod.sent[1].key)

	require.NoError(t, p.Close())
	assert.True(t, prod.closed)
}

func TestFanOutPublisher_ContinuesPastFailures(t *testing.T) {
	prod := &fakeProducer{}
	f := NewFanOutPublisher(logger.Nop(), failingPublisher{}, NewKafkaEventPublisher(prod, "t", "p"))

	err := f.PublishTraining(context.Background(), models.TrainingEvent{Symbol: "AAPL"})
	assert.Error(t, err)
	assert.Len(t, prod.sent, 1)

	require.NoError(t, f.PublishPrediction(context.Background(), models.PredictionEvent{Symbol: "AAPL"}))
	require.NoError(t, f.Close())
}
