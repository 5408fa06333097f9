package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	pkgkafka "StockX/pkg/kafka"
	"StockX/pkg/logger"
)

// KafkaTrainHandler consumes training requests from Kafka.
type KafkaTrainHandler struct {
	topic   string
	trainer Trainer
	metrics domrepo.Metrics
	logger  *logger.Logger
}

func NewKafkaTrainHandler(topic string, trainer Trainer, metrics domrepo.Metrics, lgr *logger.Logger) *KafkaTrainHandler {
	return &KafkaTrainHandler{topic: topic, trainer: trainer, metrics: metrics, logger: lgr}
}

func (h *KafkaTrainHandler) Topic() string { return h.topic }

// incoming message schema: models.TrainRequest as JSON
func (h *KafkaTrainHandler) Handle(ctx context.Context, b []byte) error {
	var req models.TrainRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode train request: %w", err)
	}
	if req.Source == "" {
		req.Source = models.SourceKafka
	}
	return runTrainRequest(ctx, h.trainer, h.logger, req)
}

type requestProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaDispatcher schedules training by publishing to the train-request
// topic. Any instance in the consumer group may pick it up.
type KafkaDispatcher struct {
	producer  requestProducer
	topic     string
	maxEpochs int
	now       func() time.Time
}

func NewKafkaDispatcher(producer requestProducer, topic string, maxEpochs int) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer, topic: topic, maxEpochs: maxEpochs, now: time.Now}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, req models.TrainRequest) (string, error) {
	if req.Source == "" {
		req.Source = models.SourceKafka
	}
	req, err := prepareTrainRequest(req, d.maxEpochs, d.now)
	if err != nil {
		return "", err
	}
	if err := d.producer.Publish(ctx, d.topic, []byte(req.Symbol), req); err != nil {
		return "", models.Busy(req.Symbol, err)
	}
	return req.JobID, nil
}

var _ pkgkafka.MessageHandler = (*KafkaTrainHandler)(nil)
