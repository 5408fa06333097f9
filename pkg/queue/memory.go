package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"StockX/pkg/logger"
)

// MemoryQueue is a bounded in-process worker pool with the same contract as
// RedisQueue. Messages are lost on restart.
type MemoryQueue struct {
	logger *logger.Logger
	config *QueueConfig

	mu      sync.RWMutex
	jobs    map[string]Job
	msgs    chan Message
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	cfg := config.withDefaults()
	return &MemoryQueue{
		logger: lgr,
		config: cfg,
		jobs:   make(map[string]Job),
		msgs:   make(chan Message, cfg.QueueSize),
	}
}

func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.Type()] = job
	q.logger.Info("job registered", logger.String("job", job.Name()), logger.String("type", job.Type()))
}

func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return ErrAlreadyRunning
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.running = true
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("memory queue started", logger.Int("workers", q.config.Workers), logger.Int("buffer", q.config.QueueSize))
	return nil
}

func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.logger.Info("memory queue stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue never blocks. A full buffer returns ErrQueueFull.
func (q *MemoryQueue) Enqueue(_ context.Context, msgType string, payload interface{}) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return "", ErrNotRunning
	}
	if _, ok := q.jobs[msgType]; !ok {
		return "", ErrUnknownType
	}
	msg, err := newMessage(msgType, payload)
	if err != nil {
		return "", err
	}
	select {
	case q.msgs <- msg:
		return msg.ID, nil
	default:
		return "", ErrQueueFull
	}
}

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case msg := <-q.msgs:
			q.process(id, msg)
		}
	}
}

func (q *MemoryQueue) process(worker int, msg Message) {
	q.mu.RLock()
	job := q.jobs[msg.Type]
	q.mu.RUnlock()

	for {
		ctx, cancel := jobContext(q.ctx, q.config.JobTimeout)
		start := time.Now()
		err := job.Handle(ctx, msg.Payload)
		cancel()
		if err == nil {
			q.logger.Debug("message processed",
				logger.String("id", msg.ID),
				logger.Int("worker_id", worker),
				logger.Duration("elapsed", time.Since(start)))
			return
		}
		if errors.Is(err, context.Canceled) && q.ctx.Err() != nil {
			return
		}
		q.logger.Error("message processing error",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Int("attempt", msg.Attempts+1),
			logger.Error(err))
		if msg.Attempts >= q.config.RetryLimit {
			return
		}
		msg.Attempts++
		select {
		case <-q.ctx.Done():
			return
		case <-time.After(q.config.RetryDelay):
		}
	}
}
