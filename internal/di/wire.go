//go:build wireinject
// +build wireinject

package di

import (
	"DealPull/pkg/config"
	"DealPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideKafkaPublisher,
		ProvideKafkaConsumer,

		// Sources
		ProvideSourceClient,
		ProvideRegistry,

		// Services and use cases
		ProvideLimiter,
		ProvideDealsUseCase,
		ProvideSnapshotService,
		ProvideWarmupHandler,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
