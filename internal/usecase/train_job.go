package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"
	"StockX/pkg/queue"
)

// TrainJobType is the queue message type of a training request.
const TrainJobType = "train_model"

// Trainer is the part of PredictionService the background entry points use.
type Trainer interface {
	TrainFor(ctx context.Context, req models.TrainRequest) (*models.TrainResult, error)
}

// TrainJob runs queued training requests.
type TrainJob struct {
	trainer Trainer
	logger  *logger.Logger
}

func NewTrainJob(trainer Trainer, lgr *logger.Logger) *TrainJob {
	return &TrainJob{trainer: trainer, logger: lgr}
}

func (j *TrainJob) Name() string { return "train-model" }
func (j *TrainJob) Type() string { return TrainJobType }

// Handle returns nil for client errors so the queue does not retry a
// request that can never succeed.
func (j *TrainJob) Handle(ctx context.Context, payload json.RawMessage) error {
	req, err := queue.ParsePayload[models.TrainRequest](payload)
	if err != nil {
		return err
	}
	return runTrainRequest(ctx, j.trainer, j.logger, *req)
}

func runTrainRequest(ctx context.Context, trainer Trainer, lgr *logger.Logger, req models.TrainRequest) error {
	_, err := trainer.TrainFor(ctx, req)
	if err == nil {
		return nil
	}
	if IsClientError(err) {
		lgr.Warn("dropping training request",
			logger.String("job_id", req.JobID),
			logger.String("symbol", req.Symbol),
			logger.String("source", req.Source),
			logger.Error(err),
		)
		return nil
	}
	return err
}

// QueueDispatcher schedules training on a job queue (Redis or in-process).
type QueueDispatcher struct {
	q         queue.Queue
	maxEpochs int
	now       func() time.Time
}

func NewQueueDispatcher(q queue.Queue, maxEpochs int) *QueueDispatcher {
	return &QueueDispatcher{q: q, maxEpochs: maxEpochs, now: time.Now}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, req models.TrainRequest) (string, error) {
	req, err := prepareTrainRequest(req, d.maxEpochs, d.now)
	if err != nil {
		return "", err
	}
	if _, err := d.q.Enqueue(ctx, TrainJobType, req); err != nil {
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrNotRunning) {
			return "", models.Busy(req.Symbol, err)
		}
		return "", fmt.Errorf("enqueue training: %w", err)
	}
	return req.JobID, nil
}

// prepareTrainRequest validates req and stamps it with a job ID.
func prepareTrainRequest(req models.TrainRequest, maxEpochs int, now func() time.Time) (models.TrainRequest, error) {
	sym, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return req, err
	}
	if req.Epochs <= 0 || (maxEpochs > 0 && req.Epochs > maxEpochs) {
		return req, models.InvalidArgument(fmt.Sprintf("epochs must be between 1 and %d", maxEpochs))
	}
	req.Symbol = sym
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}
	if req.Source == "" {
		req.Source = models.SourceQueue
	}
	req.RequestedAt = now().UTC()
	return req, nil
}

var _ queue.Job = (*TrainJob)(nil)
