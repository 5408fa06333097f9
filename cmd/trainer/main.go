package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"StockX/internal/di"
	"StockX/internal/domain/models"
	"StockX/internal/usecase"
	"StockX/pkg/config"
	"StockX/pkg/logger"
)

// progressLog prints one line per finished epoch.
type progressLog struct {
	lgr *logger.Logger
}

func (p progressLog) Publish(pr models.TrainingProgress) {
	if pr.Done {
		return
	}
	p.lgr.Info("epoch",
		logger.String("symbol", pr.Symbol),
		logger.Int("epoch", pr.Epoch),
		logger.Int("epochs", pr.Epochs),
		logger.Float64("loss", pr.Loss),
		logger.Float64("val_loss", pr.ValLoss))
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "AAPL", "ticker to train")
	epochs := flag.Int("epochs", 5, "training epochs")
	predict := flag.Bool("predict", false, "predict the next close after training")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := run(cfg, *symbol, *epochs, *predict); err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, symbol string, epochs int, predict bool) error {
	lgr, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}

	// With Redis enabled the CLI shares the service's per-symbol lease.
	rc, err := di.ProvideRedisCache(cfg)
	if err != nil {
		return err
	}
	c := di.ProvideCache(cfg, rc)
	defer c.Close()
	locker := di.ProvideSymbolLock(cfg, rc, c, lgr)

	artifacts, err := di.ProvideArtifactStore(cfg, lgr)
	if err != nil {
		return err
	}
	source, err := di.ProvideSentimentSource(cfg, di.ProvideNewsFeed(cfg), lgr)
	if err != nil {
		return err
	}

	svc := usecase.NewPredictionService(di.PredictionConfig(cfg),
		di.ProvidePriceFeed(cfg, c, lgr), artifacts, source, locker,
		usecase.WithMetrics(di.ProvideMetrics()),
		usecase.WithProgress(progressLog{lgr: lgr}),
		usecase.WithLogger(lgr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.TrainFor(ctx, models.TrainRequest{
		Symbol:      symbol,
		Epochs:      epochs,
		Source:      models.SourceCLI,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := printJSON(res); err != nil {
		return err
	}

	if !predict {
		return nil
	}
	pred, err := svc.Predict(ctx, symbol)
	if err != nil {
		return err
	}
	return printJSON(pred)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
