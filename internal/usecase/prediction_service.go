package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/internal/domain/service"
	"StockX/internal/services/features"
	"StockX/internal/services/lstm"
	"StockX/pkg/logger"
	"StockX/pkg/metrics"
	"StockX/pkg/trace"
	"StockX/pkg/util"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-^=]{0,19}$`)

// PredictionConfig holds the model and timing parameters of the service.
type PredictionConfig struct {
	Architecture       models.Architecture
	LearningRate       float64
	Seed               int64
	BatchSize          int
	ValidationFraction float64
	Shuffle            bool
	MaxEpochs          int
	LookbackDays       int
	PriceTimeout       time.Duration
	HistoryTimeout     time.Duration
}

// PredictionOption customizes optional collaborators.
type PredictionOption func(*PredictionService)

func WithRecorder(r domrepo.PredictionRecorder) PredictionOption {
	return func(s *PredictionService) { s.recorder = r }
}

func WithPublisher(p domrepo.EventPublisher) PredictionOption {
	return func(s *PredictionService) { s.publisher = p }
}

func WithMetrics(m domrepo.Metrics) PredictionOption {
	return func(s *PredictionService) { s.metrics = m }
}

func WithProgress(p domrepo.ProgressSink) PredictionOption {
	return func(s *PredictionService) { s.progress = p }
}

func WithLogger(l *logger.Logger) PredictionOption {
	return func(s *PredictionService) { s.logger = l }
}

// PredictionService is the single entry point for training, prediction and
// sentiment. HTTP, queue, Kafka, cron and CLI callers all go through it.
type PredictionService struct {
	cfg       PredictionConfig
	prices    domrepo.PriceFeed
	artifacts domrepo.ArtifactStore
	sentiment service.SentimentSource
	locker    service.SymbolLocker

	recorder  domrepo.PredictionRecorder
	publisher domrepo.EventPublisher
	metrics   domrepo.Metrics
	progress  domrepo.ProgressSink
	logger    *logger.Logger
	now       func() time.Time
}

func NewPredictionService(
	cfg PredictionConfig,
	prices domrepo.PriceFeed,
	artifacts domrepo.ArtifactStore,
	sentiment service.SentimentSource,
	locker service.SymbolLocker,
	opts ...PredictionOption,
) *PredictionService {
	if cfg.Architecture.WindowSize <= 0 {
		cfg.Architecture = lstm.DefaultArchitecture()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.MaxEpochs <= 0 {
		cfg.MaxEpochs = 500
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 120
	}
	if cfg.PriceTimeout <= 0 {
		cfg.PriceTimeout = 5 * time.Second
	}
	if cfg.HistoryTimeout <= 0 {
		cfg.HistoryTimeout = 30 * time.Second
	}
	s := &PredictionService{
		cfg:       cfg,
		prices:    prices,
		artifacts: artifacts,
		sentiment: sentiment,
		locker:    locker,
		metrics:   metrics.Nop{},
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeSymbol trims and upper-cases symbol and rejects anything that
// cannot be a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	sym := util.NormalizeSymbol(symbol)
	if !symbolPattern.MatchString(sym) {
		return "", models.InvalidArgument(fmt.Sprintf("invalid symbol %q", symbol))
	}
	return sym, nil
}

// Train fits a fresh model on the full history of symbol and replaces the
// stored artifact.
func (s *PredictionService) Train(ctx context.Context, symbol string, epochs int) (*models.TrainResult, error) {
	return s.TrainFor(ctx, models.TrainRequest{Symbol: symbol, Epochs: epochs, Source: models.SourceHTTP})
}

// TrainFor runs a training request on behalf of any entry point. The
// request source is carried into the published TrainingEvent.
func (s *PredictionService) TrainFor(ctx context.Context, req models.TrainRequest) (res *models.TrainResult, err error) {
	sym, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if req.Epochs <= 0 || req.Epochs > s.cfg.MaxEpochs {
		return nil, models.InvalidArgument(fmt.Sprintf("epochs must be between 1 and %d", s.cfg.MaxEpochs))
	}

	start := s.now()
	ctx, span := trace.StartSpan(ctx, "prediction.Train", trace.Symbol(sym), attribute.Int("epochs", req.Epochs))
	var model *models.TrainedModel
	defer func() {
		trace.End(span, err)
		s.finishTraining(ctx, sym, req, model, start, err)
	}()

	unlock, err := s.locker.Lock(ctx, sym)
	if err != nil {
		return nil, models.TrainingFailed(sym, fmt.Errorf("acquire lock: %w", err))
	}
	defer unlock()

	model, err = s.fit(ctx, sym, req.Epochs)
	if err != nil {
		return nil, err
	}
	if err = s.artifacts.Put(ctx, model); err != nil {
		model = nil
		return nil, models.TrainingFailed(sym, fmt.Errorf("save artifact: %w", err))
	}

	return &models.TrainResult{
		Status:  models.StatusSuccess,
		Message: fmt.Sprintf("Model for %s trained successfully.", sym),
		Details: &models.TrainDetails{
			Epochs:        model.Epochs,
			Samples:       model.Samples,
			Loss:          model.Loss,
			ValLoss:       model.ValLoss,
			TrainingRange: model.TrainingRangeLabel(),
			DurationMs:    s.now().Sub(start).Milliseconds(),
		},
	}, nil
}

func (s *PredictionService) fit(ctx context.Context, sym string, epochs int) (*models.TrainedModel, error) {
	hctx, cancel := context.WithTimeout(ctx, s.cfg.HistoryTimeout)
	bars, err := s.prices.History(hctx, sym, domrepo.PeriodMax())
	cancel()
	if err != nil {
		return nil, models.SymbolNotFound(sym, err)
	}
	if len(bars) == 0 {
		return nil, models.SymbolNotFound(sym, nil)
	}

	pre := features.NewPreprocessor(s.cfg.Architecture.WindowSize)
	closes := models.Closes(bars)
	scaling, err := pre.FitScale(closes)
	if err != nil {
		return nil, models.WithSymbol(err, sym)
	}
	normalized, err := pre.Normalize(closes, scaling)
	if err != nil {
		return nil, models.WithSymbol(err, sym)
	}
	windows, targets, err := pre.MakeWindows(normalized)
	if err != nil {
		return nil, models.WithSymbol(err, sym)
	}

	net, err := lstm.New(lstm.Config{
		Architecture: s.cfg.Architecture,
		LearningRate: s.cfg.LearningRate,
		Seed:         s.cfg.Seed,
	})
	if err != nil {
		return nil, models.TrainingFailed(sym, err)
	}

	s.logger.Info("training started",
		logger.String("symbol", sym),
		logger.Int("bars", len(bars)),
		logger.Int("windows", len(windows)),
		logger.Int("epochs", epochs),
	)
	hist, err := net.Fit(ctx, windows, targets, lstm.FitOptions{
		Epochs:             epochs,
		BatchSize:          s.cfg.BatchSize,
		ValidationFraction: s.cfg.ValidationFraction,
		Shuffle:            s.cfg.Shuffle,
		OnEpoch: func(st models.EpochStats) {
			s.publishProgress(models.TrainingProgress{
				Symbol: sym, Epoch: st.Epoch, Epochs: epochs, Loss: st.Loss, ValLoss: st.ValLoss,
			})
		},
	})
	if err != nil {
		return nil, models.TrainingFailed(sym, err)
	}

	last := hist.Last()
	return &models.TrainedModel{
		Symbol:  sym,
		Weights: net.Weights(),
		Scaling: scaling,
		TrainingRange: models.DateRange{
			From: bars[0].Date,
			To:   bars[len(bars)-1].Date,
		},
		TrainedAt: s.now().UTC(),
		Epochs:    epochs,
		Samples:   len(windows),
		Loss:      last.Loss,
		ValLoss:   last.ValLoss,
	}, nil
}

// finishTraining reports the outcome of a run to metrics, progress
// subscribers and the event publisher.
func (s *PredictionService) finishTraining(ctx context.Context, sym string, req models.TrainRequest, m *models.TrainedModel, start time.Time, err error) {
	dur := s.now().Sub(start)
	ev := models.TrainingEvent{
		Symbol:     sym,
		Epochs:     req.Epochs,
		Source:     req.Source,
		DurationMs: dur.Milliseconds(),
		Timestamp:  s.now().UTC(),
	}
	done := models.TrainingProgress{Symbol: sym, Epoch: req.Epochs, Epochs: req.Epochs, Done: true}

	if err != nil {
		ev.Status = models.StatusFailed
		ev.Error = err.Error()
		done.Error = err.Error()
		s.metrics.RecordOperation("train", "error", dur)
		s.metrics.RecordError(string(models.KindOf(err)))
		s.logger.Warn("training failed", logger.String("symbol", sym), logger.String("source", req.Source), logger.Error(err))
	} else {
		ev.Status = models.StatusSuccess
		ev.Samples, ev.Loss, ev.ValLoss = m.Samples, m.Loss, m.ValLoss
		done.Loss, done.ValLoss = m.Loss, m.ValLoss
		s.metrics.RecordOperation("train", "ok", dur)
		s.metrics.RecordTraining(sym, m.Loss, m.ValLoss, m.Samples)
		s.logger.Info("training finished",
			logger.String("symbol", sym),
			logger.String("source", req.Source),
			logger.Float64("loss", m.Loss),
			logger.Float64("val_loss", m.ValLoss),
			logger.Duration("duration", dur),
		)
	}
	s.publishProgress(done)

	if s.publisher != nil {
		if perr := s.publisher.PublishTraining(context.WithoutCancel(ctx), ev); perr != nil {
			s.logger.Warn("publish training event", logger.String("symbol", sym), logger.Error(perr))
		}
	}
}

func (s *PredictionService) publishProgress(p models.TrainingProgress) {
	if s.progress == nil {
		return
	}
	p.Timestamp = s.now().UnixMilli()
	s.progress.Publish(p)
}

// Predict forecasts the next trading day's close of symbol from its stored
// model. It never writes the artifact.
func (s *PredictionService) Predict(ctx context.Context, symbol string) (pred *models.Prediction, err error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	start := s.now()
	ctx, span := trace.StartSpan(ctx, "prediction.Predict", trace.Symbol(sym))
	defer func() {
		trace.End(span, err)
		if err != nil {
			s.metrics.RecordOperation("predict", "error", s.now().Sub(start))
			s.metrics.RecordError(string(models.KindOf(err)))
		}
	}()

	model, err := s.artifacts.Get(ctx, sym)
	if err != nil {
		if models.KindOf(err) != "" {
			return nil, models.WithSymbol(err, sym)
		}
		return nil, models.UpstreamFetch(sym, fmt.Errorf("load artifact: %w", err))
	}
	net, err := lstm.FromWeights(model.Weights)
	if err != nil {
		return nil, models.WithSymbol(err, sym)
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.PriceTimeout)
	bars, err := s.prices.History(pctx, sym, domrepo.PeriodDays(s.cfg.LookbackDays))
	cancel()
	if err != nil {
		return nil, models.SymbolNotFound(sym, err)
	}
	if len(bars) == 0 {
		return nil, models.SymbolNotFound(sym, nil)
	}

	pre := features.NewPreprocessor(model.Weights.Architecture.WindowSize)
	closes := models.Closes(bars)
	window, err := pre.LatestWindow(closes, model.Scaling)
	if err != nil {
		return nil, models.WithSymbol(err, sym)
	}
	y, err := net.Predict(window)
	if err != nil {
		return nil, models.CorruptArtifact(sym, err)
	}

	pred = &models.Prediction{
		Symbol:            sym,
		LastActualPrice:   round2(closes[len(closes)-1]),
		NextDayPrediction: round2(pre.Denormalize(y, model.Scaling)),
		TrainingRange:     model.TrainingRangeLabel(),
	}
	span.SetAttributes(attribute.Float64("prediction", pred.NextDayPrediction))
	s.metrics.RecordOperation("predict", "ok", s.now().Sub(start))
	s.metrics.RecordPrediction(sym, pred.LastActualPrice, pred.NextDayPrediction)
	s.recordPrediction(ctx, pred, model.TrainedAt)
	return pred, nil
}

// recordPrediction writes the ledger row and event. Both are best effort.
func (s *PredictionService) recordPrediction(ctx context.Context, p *models.Prediction, trainedAt time.Time) {
	ctx = context.WithoutCancel(ctx)
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, models.NewPredictionRecord(p, trainedAt)); err != nil {
			s.logger.Warn("record prediction", logger.String("symbol", p.Symbol), logger.Error(err))
		}
	}
	if s.publisher != nil {
		ev := models.PredictionEvent{
			Symbol:            p.Symbol,
			LastActualPrice:   p.LastActualPrice,
			NextDayPrediction: p.NextDayPrediction,
			ModelTrainedAt:    trainedAt,
			Timestamp:         s.now().UTC(),
		}
		if err := s.publisher.PublishPrediction(ctx, ev); err != nil {
			s.logger.Warn("publish prediction event", logger.String("symbol", p.Symbol), logger.Error(err))
		}
	}
}

// Sentiment never fails on upstream problems; they degrade to neutral.
func (s *PredictionService) Sentiment(ctx context.Context, symbol string, windowDays int) (*models.SentimentSignal, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if windowDays < 1 {
		return nil, models.InvalidArgument("window_days must be at least 1")
	}
	start := s.now()
	sig := s.sentiment.Signal(ctx, sym, windowDays)
	s.metrics.RecordOperation("sentiment", "ok", s.now().Sub(start))
	s.metrics.RecordSentiment(sym, sig.AveragePolarity, sig.SampleCount)
	return &sig, nil
}

// Insight runs Predict and Sentiment concurrently. Only a predict failure
// is returned as an error.
func (s *PredictionService) Insight(ctx context.Context, symbol string, windowDays int) (*models.Insight, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if windowDays < 1 {
		return nil, models.InvalidArgument("window_days must be at least 1")
	}
	ctx, span := trace.StartSpan(ctx, "prediction.Insight", trace.Symbol(sym))
	defer span.End()

	var (
		wg      sync.WaitGroup
		pred    *models.Prediction
		predErr error
		sig     *models.SentimentSignal
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pred, predErr = s.Predict(ctx, sym)
	}()
	go func() {
		defer wg.Done()
		sig, _ = s.Sentiment(ctx, sym, windowDays)
	}()
	wg.Wait()

	if predErr != nil {
		return nil, predErr
	}
	out := &models.Insight{Symbol: sym, Prediction: pred}
	if sig != nil {
		out.Sentiment = *sig
	} else {
		out.Sentiment = models.NeutralSignal(sym, windowDays)
	}
	return out, nil
}

// ListModels returns the symbols that have a stored model.
func (s *PredictionService) ListModels(ctx context.Context) ([]string, error) {
	syms, err := s.artifacts.List(ctx)
	if err != nil {
		return nil, models.UpstreamFetch("", err)
	}
	if syms == nil {
		syms = []string{}
	}
	return syms, nil
}

// RecentPredictions reads the newest ledger rows of symbol. A zero limit
// means the default page size.
func (s *PredictionService) RecentPredictions(ctx context.Context, symbol string, limit int) ([]models.PredictionRecord, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = defaultRecentLimit
	}
	if limit < 0 || limit > maxRecentLimit {
		return nil, models.InvalidArgument(fmt.Sprintf("limit must be between 1 and %d", maxRecentLimit))
	}
	if s.recorder == nil {
		return []models.PredictionRecord{}, nil
	}
	rows, err := s.recorder.Recent(ctx, sym, limit)
	if err != nil {
		return nil, models.UpstreamFetch(sym, err)
	}
	return rows, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service or its upstreams.
func IsClientError(err error) bool {
	return errors.Is(err, models.ErrInvalidArgument) ||
		errors.Is(err, models.ErrSymbolNotFound) ||
		errors.Is(err, models.ErrInsufficientData) ||
		errors.Is(err, models.ErrDegenerateRange) ||
		errors.Is(err, models.ErrModelNotFound)
}
