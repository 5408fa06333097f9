package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"StockX/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoPayload struct {
	Symbol string `json:"symbol"`
}

type recordingJob struct {
	seen  chan string
	fails int32
	calls atomic.Int32
}

func (j *recordingJob) Name() string { return "recording" }
func (j *recordingJob) Type() string { return "echo" }

func (j *recordingJob) Handle(_ context.Context, payload json.RawMessage) error {
	n := j.calls.Add(1)
	if n <= j.fails {
		return errors.New("boom")
	}
	p, err := ParsePayload[echoPayload](payload)
	if err != nil {
		return err
	}
	j.seen <- p.Symbol
	return nil
}

func TestMemoryQueue_ProcessesMessages(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), &QueueConfig{Workers: 1, QueueSize: 4})
	job := &recordingJob{seen: make(chan string, 1)}
	q.RegisterJob(job)
	require.NoError(t, q.Start())
	defer q.Stop(context.Background())

	id, err := q.Enqueue(context.Background(), "echo", echoPayload{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case sym := <-job.seen:
		assert.Equal(t, "AAPL", sym)
	case <-time.After(2 * time.Second):
		t.Fatal("message not processed")
	}
}

func TestMemoryQueue_RejectsUnknownTypeAndStopped(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), nil)
	_, err := q.Enqueue(context.Background(), "echo", nil)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, q.Start())
	defer q.Stop(context.Background())
	_, err = q.Enqueue(context.Background(), "echo", nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMemoryQueue_Retries(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), &QueueConfig{RetryLimit: 1, RetryDelay: 5 * time.Millisecond})
	job := &recordingJob{seen: make(chan string, 1), fails: 1}
	q.RegisterJob(job)
	require.NoError(t, q.Start())
	defer q.Stop(context.Background())

	_, err := q.Enqueue(context.Background(), "echo", echoPayload{Symbol: "MSFT"})
	require.NoError(t, err)

	select {
	case sym := <-job.seen:
		assert.Equal(t, "MSFT", sym)
		assert.EqualValues(t, 2, job.calls.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("retry not processed")
	}
}
