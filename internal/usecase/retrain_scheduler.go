package usecase

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"StockX/internal/domain/models"
	"StockX/internal/domain/service"
	"StockX/pkg/logger"
)

// RetrainScheduler periodically dispatches a training run for a fixed list
// of symbols.
type RetrainScheduler struct {
	cron       *cron.Cron
	dispatcher service.TrainDispatcher
	symbols    []string
	epochs     int
	logger     *logger.Logger
}

func NewRetrainScheduler(dispatcher service.TrainDispatcher, symbols []string, epochs int, lgr *logger.Logger) *RetrainScheduler {
	return &RetrainScheduler{
		cron:       cron.New(cron.WithSeconds()),
		dispatcher: dispatcher,
		symbols:    symbols,
		epochs:     epochs,
		logger:     lgr,
	}
}

// Register adds the retrain task under expr, a six-field cron expression.
func (s *RetrainScheduler) Register(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.RunNow); err != nil {
		return fmt.Errorf("register retrain task: %w", err)
	}
	return nil
}

func (s *RetrainScheduler) Start() {
	s.cron.Start()
	s.logger.Info("retrain scheduler started", logger.Strings("symbols", s.symbols))
}

// Stop waits for a running dispatch to finish or ctx to end.
func (s *RetrainScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("retrain scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow dispatches one training request per symbol.
func (s *RetrainScheduler) RunNow() {
	ctx := context.Background()
	for _, sym := range s.symbols {
		id, err := s.dispatcher.Dispatch(ctx, models.TrainRequest{
			Symbol: sym,
			Epochs: s.epochs,
			Source: models.SourceScheduler,
		})
		if err != nil {
			s.logger.Error("dispatch scheduled training", logger.String("symbol", sym), logger.Error(err))
			continue
		}
		s.logger.Info("scheduled training queued", logger.String("symbol", sym), logger.String("job_id", id))
	}
}
