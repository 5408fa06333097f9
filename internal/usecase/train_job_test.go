package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"
	"StockX/pkg/metrics"
	"StockX/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrainer struct {
	reqs chan models.TrainRequest
	err  error
}

// TrainFor records req when there is room and never blocks the caller.
func (s *stubTrainer) TrainFor(_ context.Context, req models.TrainRequest) (*models.TrainResult, error) {
	select {
	case s.reqs <- req:
	default:
	}
	return &models.TrainResult{Status: models.StatusSuccess}, s.err
}

func TestTrainJob_ClientErrorsAreNotRetried(t *testing.T) {
	tr := &stubTrainer{reqs: make(chan models.TrainRequest, 1), err: models.SymbolNotFound("ZZZ", nil)}
	job := NewTrainJob(tr, logger.Nop())

	raw, _ := json.Marshal(models.TrainRequest{Symbol: "ZZZ", Epochs: 1})
	assert.NoError(t, job.Handle(context.Background(), raw))
	assert.Equal(t, "ZZZ", (<-tr.reqs).Symbol)

	tr.err = errors.New("disk full")
	done := make(chan error, 1)
	go func() { done <- job.Handle(context.Background(), raw) }()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return")
	}
	assert.Equal(t, "ZZZ", (<-tr.reqs).Symbol)
}

func TestQueueDispatcher_RunsThroughMemoryQueue(t *testing.T) {
	tr := &stubTrainer{reqs: make(chan models.TrainRequest, 1)}
	q := queue.NewMemoryQueue(logger.Nop(), &queue.QueueConfig{Workers: 1, QueueSize: 4})
	q.RegisterJob(NewTrainJob(tr, logger.Nop()))
	require.NoError(t, q.Start())
	defer q.Stop(context.Background())

	d := NewQueueDispatcher(q, 100)
	id, err := d.Dispatch(context.Background(), models.TrainRequest{Symbol: " msft ", Epochs: 3, Source: models.SourceHTTP})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case req := <-tr.reqs:
		assert.Equal(t, "MSFT", req.Symbol)
		assert.Equal(t, 3, req.Epochs)
		assert.Equal(t, id, req.JobID)
		assert.Equal(t, models.SourceHTTP, req.Source)
		assert.False(t, req.RequestedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("training request was not processed")
	}
}

func TestQueueDispatcher_Validates(t *testing.T) {
	q := queue.NewMemoryQueue(logger.Nop(), nil)
	d := NewQueueDispatcher(q, 100)

	_, err := d.Dispatch(context.Background(), models.TrainRequest{Symbol: "AAPL", Epochs: 0})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = d.Dispatch(context.Background(), models.TrainRequest{Symbol: "AAPL", Epochs: 1})
	assert.ErrorIs(t, err, models.ErrBusy, "queue is not started")
}

type captureProducer struct {
	topic string
	key   string
	value interface{}
}

func (c *captureProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	c.topic, c.key, c.value = topic, string(key), value
	return nil
}

func TestKafkaDispatcherAndHandler(t *testing.T) {
	prod := &captureProducer{}
	d := NewKafkaDispatcher(prod, "stockx.train-requests", 100)

	id, err := d.Dispatch(context.Background(), models.TrainRequest{Symbol: "nvda", Epochs: 2})
	require.NoError(t, err)
	assert.Equal(t, "stockx.train-requests", prod.topic)
	assert.Equal(t, "NVDA", prod.key)

	raw, err := json.Marshal(prod.value)
	require.NoError(t, err)

	tr := &stubTrainer{reqs: make(chan models.TrainRequest, 1)}
	h := NewKafkaTrainHandler("stockx.train-requests", tr, metrics.Nop{}, logger.Nop())
	require.NoError(t, h.Handle(context.Background(), raw))
	req := <-tr.reqs
	assert.Equal(t, id, req.JobID)
	assert.Equal(t, models.SourceKafka, req.Source)

	assert.Error(t, h.Handle(context.Background(), []byte("{")))
}

type recordingDispatcher struct {
	reqs []models.TrainRequest
}

func (r *recordingDispatcher) Dispatch(_ context.Context, req models.TrainRequest) (string, error) {
	r.reqs = append(r.reqs, req)
	if req.Symbol == "BAD" {
		return "", errors.New("nope")
	}
	return "job-" + req.Symbol, nil
}

func TestRetrainScheduler(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewRetrainScheduler(d, []string{"AAPL", "BAD", "MSFT"}, 7, logger.Nop())
	require.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))

	s.RunNow()
	require.Len(t, d.reqs, 3)
	assert.Equal(t, models.SourceScheduler, d.reqs[0].Source)
	assert.Equal(t, 7, d.reqs[2].Epochs)

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
}
