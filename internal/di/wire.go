//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideClock,

		// Providers
		ProvideHTTPClient,
		ProvideFinnhubClient,
		ProvideQuoteSource,
		ProvideProfileSource,
		ProvideHistorySource,
		ProvideFallback,

		// Storage and sinks
		ProvideStore,
		ProvideSink,

		// Use cases
		ProvideSynchronizer,
		ProvideAggregator,
		ProvidePredictionClient,
		ProvideStreamer,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
