package di

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockX/internal/domain/models"
	domrepo "StockX/internal/domain/repository"
	"StockX/internal/domain/service"
	"StockX/internal/handler/api"
	internalrepo "StockX/internal/repository"
	"StockX/internal/service/lock"
	"StockX/internal/service/progress"
	"StockX/internal/service/ratelimit"
	"StockX/internal/services/market"
	"StockX/internal/services/news"
	"StockX/internal/services/notify"
	"StockX/internal/services/sentiment"
	"StockX/internal/usecase"
	"StockX/pkg/cache"
	pkgch "StockX/pkg/clickhouse"
	"StockX/pkg/config"
	xhttp "StockX/pkg/http"
	pkgkafka "StockX/pkg/kafka"
	"StockX/pkg/logger"
	"StockX/pkg/metrics"
	"StockX/pkg/queue"
	"StockX/pkg/server"
	"StockX/pkg/trace"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lgr, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// Tracing marks that the global tracer provider is installed.
type Tracing struct{}

func ProvideTracing(cfg *config.Config) (Tracing, error) {
	if err := trace.Init(trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	}); err != nil {
		return Tracing{}, fmt.Errorf("tracing: %w", err)
	}
	return Tracing{}, nil
}

// ProvideRedisCache connects to Redis when enabled. It returns nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, 2),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache layers an in-process cache over Redis, or uses memory alone.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc != nil {
		return cache.NewLayeredCache(rc, cache.WithL1(1000, time.Minute))
	}
	return cache.NewMemoryCache(
		cache.WithMemoryMaxSize(1000),
		cache.WithMemoryDefaultTTL(cfg.PriceFeed.CacheTTL),
	)
}

// ProvidePriceFeed selects the bar source and puts the cache in front of it.
func ProvidePriceFeed(cfg *config.Config, c cache.Service, lgr *logger.Logger) domrepo.PriceFeed {
	var feed domrepo.PriceFeed
	switch cfg.PriceFeed.Provider {
	case "chart":
		client := xhttp.NewClient(
			xhttp.WithTimeout(cfg.Timeouts.History),
			xhttp.WithUserAgent(xhttp.BrowserUserAgent),
		)
		feed = market.NewChartFeed(client, cfg.PriceFeed.ChartURL)
	default:
		feed = market.NewYFinanceFeed()
	}
	if cfg.PriceFeed.CacheTTL <= 0 {
		return feed
	}
	return market.NewCachedFeed(feed, c, cfg.PriceFeed.CacheTTL, lgr)
}

// ProvideNewsFeed selects NewsAPI or the keyless RSS search.
func ProvideNewsFeed(cfg *config.Config) domrepo.NewsFeed {
	limiter := ratelimit.New(cfg.News.RateCapacity, cfg.News.RateRefill)
	if cfg.News.Provider == "rss" {
		return news.NewRSSFeed(cfg.News.RSSURL, cfg.Timeouts.News, limiter)
	}
	client := xhttp.NewClient(xhttp.WithTimeout(cfg.Timeouts.News))
	return news.NewNewsAPIFeed(client, cfg.News.BaseURL, cfg.News.APIKey, limiter)
}

// ProvideSentimentSource builds the news aggregator with the configured scorers.
func ProvideSentimentSource(cfg *config.Config, feed domrepo.NewsFeed, lgr *logger.Logger) (service.SentimentSource, error) {
	title, err := sentiment.New(cfg.News.TitleScorer)
	if err != nil {
		return nil, fmt.Errorf("title scorer: %w", err)
	}
	opts := []news.Option{
		news.WithTimeout(cfg.Timeouts.News),
		news.WithMaxItems(cfg.News.MaxItems),
		news.WithQueryDefaults(cfg.News.Language, cfg.News.SortBy),
		news.WithLogger(lgr),
	}
	if cfg.News.ExtractContent {
		content, err := sentiment.New(cfg.News.ContentScorer)
		if err != nil {
			return nil, fmt.Errorf("content scorer: %w", err)
		}
		opts = append(opts, news.WithContent(news.NewArticleExtractor(cfg.Timeouts.News), content))
	}
	return news.NewAggregator(feed, title, opts...), nil
}

// ProvideArtifactStore opens the file or S3 model store behind a read cache.
func ProvideArtifactStore(cfg *config.Config, lgr *logger.Logger) (domrepo.ArtifactStore, error) {
	var store domrepo.ArtifactStore
	switch cfg.Artifacts.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3, err := internalrepo.NewS3ArtifactStore(ctx, internalrepo.S3Options{
			Bucket:       cfg.Artifacts.S3.Bucket,
			Prefix:       cfg.Artifacts.S3.Prefix,
			Region:       cfg.Artifacts.S3.Region,
			Endpoint:     cfg.Artifacts.S3.Endpoint,
			UsePathStyle: cfg.Artifacts.S3.UsePathStyle,
		}, lgr)
		if err != nil {
			return nil, fmt.Errorf("s3 artifact store: %w", err)
		}
		store = s3
	default:
		fs, err := internalrepo.NewFileArtifactStore(cfg.Artifacts.Dir, lgr)
		if err != nil {
			return nil, fmt.Errorf("file artifact store: %w", err)
		}
		store = fs
	}
	if cfg.Artifacts.CacheTTL <= 0 {
		return store, nil
	}
	return internalrepo.NewCachedArtifactStore(store, cfg.Artifacts.CacheTTL), nil
}

// ProvideClickHouseClient connects only when ClickHouse records predictions.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Recorder.Backend != "clickhouse" {
		return nil, nil
	}
	cc := cfg.ClickHouse
	client, err := pkgch.NewClient(context.Background(), pkgch.Options{
		Host:        cc.Host,
		Port:        cc.Port,
		Database:    cc.Database,
		User:        cc.User,
		Password:    cc.Password,
		HTTP:        cc.UseHTTP,
		AsyncInsert: cc.AsyncInsert,
		DialTimeout: cc.DialTimeout,
		ReadTimeout: cc.ReadTimeout,
		MaxExecTime: cc.MaxExecTime,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRecorder opens the prediction ledger.
func ProvideRecorder(cfg *config.Config, ch *pkgch.Client, lgr *logger.Logger) (domrepo.PredictionRecorder, error) {
	switch cfg.Recorder.Backend {
	case "sqlite":
		r, err := internalrepo.NewSQLitePredictionRecorder(cfg.Recorder.SQLite.Path, lgr)
		if err != nil {
			return nil, fmt.Errorf("sqlite recorder: %w", err)
		}
		return r, nil
	case "clickhouse":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r, err := internalrepo.NewCHPredictionRecorder(ctx, ch, lgr)
		if err != nil {
			return nil, fmt.Errorf("clickhouse recorder: %w", err)
		}
		return r, nil
	default:
		return internalrepo.NopPredictionRecorder{}, nil
	}
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher fans events out to Kafka and Telegram, whichever
// are enabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, lgr *logger.Logger) (domrepo.EventPublisher, error) {
	var sinks []domrepo.EventPublisher
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaEventPublisher(producer,
			cfg.Kafka.Topics.TrainingEvents, cfg.Kafka.Topics.PredictionEvents))
	}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramPublisher(cfg.Telegram.BotToken, strconv.FormatInt(cfg.Telegram.ChatID, 10))
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		sinks = append(sinks, tg)
	}
	switch len(sinks) {
	case 0:
		return internalrepo.NopEventPublisher{}, nil
	case 1:
		return sinks[0], nil
	default:
		return internalrepo.NewFanOutPublisher(lgr, sinks...), nil
	}
}

// ProvideSymbolLock serializes training per symbol, across replicas when
// Redis is available.
func ProvideSymbolLock(cfg *config.Config, rc *cache.RedisCache, c cache.Service, lgr *logger.Logger) *lock.SymbolLock {
	opts := []lock.Option{lock.WithLogger(lgr)}
	if rc != nil {
		opts = append(opts, lock.WithShared(c, cfg.Redis.LockTTL))
	}
	return lock.New(opts...)
}

func ProvideProgressHub() *progress.Hub {
	return progress.NewHub()
}

// ProvidePredictionService assembles the prediction service.
func ProvidePredictionService(
	cfg *config.Config,
	prices domrepo.PriceFeed,
	artifacts domrepo.ArtifactStore,
	source service.SentimentSource,
	locker *lock.SymbolLock,
	recorder domrepo.PredictionRecorder,
	publisher domrepo.EventPublisher,
	m domrepo.Metrics,
	hub *progress.Hub,
	lgr *logger.Logger,
	_ Tracing,
) *usecase.PredictionService {
	return usecase.NewPredictionService(PredictionConfig(cfg), prices, artifacts, source, locker,
		usecase.WithRecorder(recorder),
		usecase.WithPublisher(publisher),
		usecase.WithMetrics(m),
		usecase.WithProgress(hub),
		usecase.WithLogger(lgr.With(logger.String("component", "prediction"))),
	)
}

// PredictionConfig maps the model section onto the service configuration.
func PredictionConfig(cfg *config.Config) usecase.PredictionConfig {
	return usecase.PredictionConfig{
		Architecture: models.Architecture{
			WindowSize: cfg.Model.WindowSize,
			Features:   1,
			LSTMUnits:  cfg.Model.LSTMUnits,
			DenseUnits: cfg.Model.DenseUnits,
		},
		LearningRate:       cfg.Model.LearningRate,
		Seed:               cfg.Model.Seed,
		BatchSize:          cfg.Model.BatchSize,
		ValidationFraction: cfg.Model.ValidationFraction,
		Shuffle:            cfg.Model.Shuffle,
		MaxEpochs:          cfg.Model.MaxEpochs,
		LookbackDays:       cfg.Prediction.LookbackDays,
		PriceTimeout:       cfg.Timeouts.Price,
		HistoryTimeout:     cfg.Timeouts.History,
	}
}

func ProvideMarketService(cfg *config.Config, prices domrepo.PriceFeed, lgr *logger.Logger) *usecase.MarketService {
	return usecase.NewMarketService(prices, cfg.Timeouts.Price, cfg.PriceFeed.TopCompanies, lgr)
}

// ProvideQueue creates the training queue, Redis-backed when available, and
// registers the training job on it.
func ProvideQueue(cfg *config.Config, rc *cache.RedisCache, svc *usecase.PredictionService, lgr *logger.Logger) queue.Queue {
	qcfg := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.BufferSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
		JobTimeout: cfg.Queue.JobTimeout,
	}
	qlog := lgr.With(logger.String("component", "queue"))
	var q queue.Queue
	if rc != nil {
		q = queue.NewRedisQueue(qlog, qcfg, rc.Client(), queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	} else {
		q = queue.NewMemoryQueue(qlog, qcfg)
	}
	q.RegisterJob(usecase.NewTrainJob(svc, qlog))
	return q
}

// ProvideTrainDispatcher publishes requests to Kafka when enabled and falls
// back to the local queue otherwise.
func ProvideTrainDispatcher(cfg *config.Config, q queue.Queue, producer *pkgkafka.Producer) service.TrainDispatcher {
	if producer != nil {
		return usecase.NewKafkaDispatcher(producer, cfg.Kafka.Topics.TrainRequests, cfg.Model.MaxEpochs)
	}
	return usecase.NewQueueDispatcher(q, cfg.Model.MaxEpochs)
}

// ProvideKafkaConsumer consumes training requests when the consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, svc *usecase.PredictionService, m domrepo.Metrics, lgr *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	klog := lgr.With(logger.String("component", "kafka"))
	consumer, err := pkgkafka.NewConsumer(klog,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.LoggingHook(klog))
	consumer.RegisterHandler(usecase.NewKafkaTrainHandler(cfg.Kafka.Topics.TrainRequests, svc, m, klog))
	return consumer, nil
}

// ProvideRetrainScheduler registers the nightly retrain when enabled.
func ProvideRetrainScheduler(cfg *config.Config, dispatcher service.TrainDispatcher, lgr *logger.Logger) (*usecase.RetrainScheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	s := usecase.NewRetrainScheduler(dispatcher, cfg.Scheduler.Symbols, cfg.Scheduler.Epochs,
		lgr.With(logger.String("component", "scheduler")))
	if err := s.Register(cfg.Scheduler.Cron); err != nil {
		return nil, err
	}
	return s, nil
}

// ProvideHTTPServer mounts every API handler on the Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	svc *usecase.PredictionService,
	mkt *usecase.MarketService,
	dispatcher service.TrainDispatcher,
	hub *progress.Hub,
	lgr *logger.Logger,
) *xhttp.Server {
	hlog := lgr.With(logger.String("component", "http"))
	handlers := xhttp.Handlers{
		api.NewMarketEchoHandler(hlog, mkt),
		api.NewPredictionEchoHandler(hlog, svc, dispatcher),
		api.NewProgressHandler(hlog, hub),
	}
	opts := []xhttp.ServerOption{
		xhttp.WithAddr(cfg.Server.Host, cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(hlog),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, cfg.Metrics.SlowRequest))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideClosers lists the resources the app releases on shutdown, in
// opening order.
func ProvideClosers(
	c cache.Service,
	ch *pkgch.Client,
	recorder domrepo.PredictionRecorder,
	publisher domrepo.EventPublisher,
) []server.Closer {
	closers := []server.Closer{{Name: "cache", Close: c.Close}}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	return append(closers,
		server.Closer{Name: "recorder", Close: recorder.Close},
		server.Closer{Name: "publisher", Close: publisher.Close},
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	httpServer *xhttp.Server,
	q queue.Queue,
	consumer *pkgkafka.Consumer,
	scheduler *usecase.RetrainScheduler,
	closers []server.Closer,
) *server.App {
	return server.New(cfg, lgr, httpServer, q, consumer, scheduler, closers)
}
