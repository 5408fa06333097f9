package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockX/internal/usecase"
	"StockX/pkg/config"
	xhttp "StockX/pkg/http"
	pkgkafka "StockX/pkg/kafka"
	applogger "StockX/pkg/logger"
	"StockX/pkg/queue"
	"StockX/pkg/trace"
)

// Closer is a named resource released on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	queue      queue.Queue
	consumer   *pkgkafka.Consumer
	scheduler  *usecase.RetrainScheduler
	closers    []Closer
}

// New creates a new App. consumer and scheduler may be nil when disabled.
// closers run in reverse order after the workers have stopped.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	httpServer *xhttp.Server,
	q queue.Queue,
	consumer *pkgkafka.Consumer,
	scheduler *usecase.RetrainScheduler,
	closers []Closer,
) *App {
	return &App{
		cfg:        cfg,
		logger:     lgr,
		httpServer: httpServer,
		queue:      q,
		consumer:   consumer,
		scheduler:  scheduler,
		closers:    closers,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.queue.Start(); err != nil {
		a.logger.Error("queue start error", applogger.Error(err))
		return err
	}
	a.logger.Info("training queue started", applogger.Int("workers", a.cfg.Queue.Workers))

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.Topics.TrainRequests))
	}

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		_ = a.shutdown(ctx)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops intake first, then workers, then infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.logger.Warn("queue stop error", applogger.Error(err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}

	if err := trace.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("trace shutdown error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
