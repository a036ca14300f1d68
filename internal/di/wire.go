//go:build wireinject
// +build wireinject

package di

import (
	"TradeDesk/pkg/config"
	"TradeDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Caching
		ProvideCacheManager,
		ProvideRedisCache,

		// Market data
		ProvideMarketSource,
		ProvideFallbackGenerator,
		ProvideCalculator,
		ProvideMarketDataProvider,

		// Desk collaborators
		ProvideTextGenerator,
		ProvideExchange,

		// Infrastructure
		ProvideClickHouseClient,
		ProvideDecisionStore,
		ProvideKafkaProducer,
		ProvideHub,
		ProvideEventPipeline,

		// Use cases
		ProvideDesk,
		ProvideMonitor,

		// HTTP
		ProvideDeskHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
