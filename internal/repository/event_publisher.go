package repository

import (
	"context"
	"errors"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/pkg/logger"
)

type topicProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher writes domain events as JSON, keyed by symbol so
// events of one symbol stay ordered within a partition.
type KafkaEventPublisher struct {
	producer        topicProducer
	trainingTopic   string
	predictionTopic string
}

func NewKafkaEventPublisher(producer topicProducer, trainingTopic, predictionTopic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, trainingTopic: trainingTopic, predictionTopic: predictionTopic}
}

func (p *KafkaEventPublisher) PublishTraining(ctx context.Context, ev models.TrainingEvent) error {
	return p.producer.Publish(ctx, p.trainingTopic, []byte(ev.Symbol), ev)
}

func (p *KafkaEventPublisher) PublishPrediction(ctx context.Context, ev models.PredictionEvent) error {
	return p.producer.Publish(ctx, p.predictionTopic, []byte(ev.Symbol), ev)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// FanOutPublisher delivers each event to every publisher. A failing sink is
// logged and does not stop delivery to the rest.
type FanOutPublisher struct {
	sinks  []domrepo.EventPublisher
	logger *logger.Logger
}

func NewFanOutPublisher(lgr *logger.Logger, sinks ...domrepo.EventPublisher) *FanOutPublisher {
	return &FanOutPublisher{sinks: sinks, logger: lgr}
}

func (f *FanOutPublisher) PublishTraining(ctx context.Context, ev models.TrainingEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.PublishTraining(ctx, ev); err != nil {
			f.logger.Warn("publish training event", logger.String("symbol", ev.Symbol), logger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanOutPublisher) PublishPrediction(ctx context.Context, ev models.PredictionEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.PublishPrediction(ctx, ev); err != nil {
			f.logger.Warn("publish prediction event", logger.String("symbol", ev.Symbol), logger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanOutPublisher) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// NopEventPublisher discards events.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishTraining(context.Context, models.TrainingEvent) error     { return nil }
func (NopEventPublisher) PublishPrediction(context.Context, models.PredictionEvent) error { return nil }
func (NopEventPublisher) Close() error                                                    { return nil }
