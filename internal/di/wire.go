//go:build wireinject
// +build wireinject

package di

import (
	"EGXAdvisor/pkg/config"
	"EGXAdvisor/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Ingest repositories
		ProvideQuoteStorage,
		ProvideQuotePublisher,
		ProvideQuoteStream,
		ProvideKafkaQuotesHandler,

		// Ingest use cases
		ProvideQuoteProcessor,
		ProvideQuoteCollector,

		// Advisory stores and services
		ProvideBarStore,
		ProvideJournalStore,
		ProvideCache,
		ProvideForecaster,
		ProvideStrategyEngine,

		// Advisory use cases
		ProvideAdvisor,
		ProvideBarsUseCase,
		ProvideJobQueue,

		// HTTP surface
		ProvideAdvisorHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
