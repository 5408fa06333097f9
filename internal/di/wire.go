//go:build wireinject
// +build wireinject

package di

import (
	"StockX/pkg/config"
	"StockX/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideTracing,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories and feeds
		ProvidePriceFeed,
		ProvideNewsFeed,
		ProvideSentimentSource,
		ProvideArtifactStore,
		ProvideRecorder,
		ProvideEventPublisher,
		ProvideSymbolLock,
		ProvideProgressHub,

		// Use cases
		ProvidePredictionService,
		ProvideMarketService,
		ProvideQueue,
		ProvideTrainDispatcher,
		ProvideKafkaConsumer,
		ProvideRetrainScheduler,

		// Application server
		ProvideHTTPServer,
		ProvideClosers,
		ProvideApp,
	)
	return &server.App{}, nil
}
