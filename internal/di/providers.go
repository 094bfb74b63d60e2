package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/fallback"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/provider"
	"StockPulse/internal/provider/alphavantage"
	"StockPulse/internal/provider/finnhub"
	"StockPulse/internal/provider/stream"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/prediction"
	"StockPulse/internal/store"
	"StockPulse/internal/usecase"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Log.Format
	if format == "" {
		format = "json"
	}
	return applogger.New(&applogger.Config{
		Level:  level,
		Format: format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClock provides wall time.
func ProvideClock() domrepo.Clock {
	return domrepo.SystemClock{}
}

// ProvideHTTPClient creates the shared outbound JSON client. Per-fetch
// deadlines come from the synchronizer's contexts; the client-level
// timeout is only a backstop.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
}

// ProvideFinnhubClient creates the Finnhub REST client.
func ProvideFinnhubClient(cfg *config.Config, httpClient *xhttp.Client) *finnhub.Client {
	return finnhub.NewClient(httpClient, finnhub.Config{
		BaseURL: cfg.Providers.Finnhub.BaseURL,
		Token:   cfg.Providers.Finnhub.APIKey,
	})
}

// ProvideQuoteSource exposes the Finnhub client as the quote source.
func ProvideQuoteSource(c *finnhub.Client) provider.QuoteSource { return c }

// ProvideProfileSource exposes the Finnhub client as the profile source.
func ProvideProfileSource(c *finnhub.Client) provider.ProfileSource { return c }

// ProvideHistorySource creates the Alpha Vantage history source.
func ProvideHistorySource(cfg *config.Config, httpClient *xhttp.Client) provider.HistorySource {
	return alphavantage.NewClient(httpClient, alphavantage.Config{
		BaseURL: cfg.Providers.AlphaVantage.BaseURL,
		APIKey:  cfg.Providers.AlphaVantage.APIKey,
	})
}

// ProvideFallback creates the synthetic data generator.
func ProvideFallback(clock domrepo.Clock) *fallback.Generator {
	return fallback.New(clock)
}

// ProvideStore selects the store backend. A Redis backend that cannot be
// reached at startup degrades to the in-memory store so the engine still
// serves traffic.
func ProvideStore(cfg *config.Config, l *applogger.Logger) domrepo.Store {
	if cfg.Store.Backend != "redis" {
		return store.NewMemoryStore()
	}
	rs, err := store.NewRedisStore(
		store.WithAddr(cfg.Store.Redis.Host, cfg.Store.Redis.Port),
		store.WithAuth(cfg.Store.Redis.Password, cfg.Store.Redis.DB),
		store.WithPrefix(cfg.Store.Redis.Prefix),
	)
	if err != nil {
		l.Warn("redis unavailable, using memory store", applogger.Error(err))
		return store.NewMemoryStore()
	}
	return rs
}

// ProvideSink selects the event sink backend.
func ProvideSink(cfg *config.Config, l *applogger.Logger) (domrepo.EventSink, error) {
	switch cfg.Sink.Backend {
	case "", "none":
		return internalrepo.NewNoopSink(), nil
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Sink.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Sink.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Sink.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Sink.Kafka.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Sink.Kafka.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Sink.Kafka.BatchTimeout),
			pkgkafka.WithTimeouts(cfg.Sink.Kafka.WriteTimeout, cfg.Sink.Kafka.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Sink.Kafka.MaxAttempts),
			pkgkafka.WithAsync(cfg.Sink.Kafka.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSink(producer, cfg.Sink.Kafka.Topic), nil
	case "clickhouse":
		database := cfg.Sink.ClickHouse.Database
		if database == "" {
			database = "stockpulse"
		}
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.Sink.ClickHouse.Host),
			pkgch.WithPort(cfg.Sink.ClickHouse.Port),
			pkgch.WithDatabase(database),
			pkgch.WithCredentials(cfg.Sink.ClickHouse.User, cfg.Sink.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.Sink.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.Sink.ClickHouse.AsyncInsert, cfg.Sink.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.Sink.ClickHouse.DialTimeout, cfg.Sink.ClickHouse.ReadTimeout, cfg.Sink.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.Sink.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.SchemaStatements(database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return internalrepo.NewClickHouseSink(client, database, l), nil
	default:
		return nil, fmt.Errorf("unknown sink backend %q", cfg.Sink.Backend)
	}
}

// ProvideSynchronizer creates the record synchronizer.
func ProvideSynchronizer(
	st domrepo.Store,
	quotes provider.QuoteSource,
	profiles provider.ProfileSource,
	history provider.HistorySource,
	fb *fallback.Generator,
	sink domrepo.EventSink,
	m domrepo.Metrics,
	clock domrepo.Clock,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Synchronizer {
	return usecase.NewSynchronizer(st, quotes, profiles, history, fb, sink, m, clock, l, usecase.SyncConfig{
		TTL:            cfg.Sync.TTL,
		QuoteTimeout:   cfg.Sync.QuoteTimeout,
		ProfileTimeout: cfg.Sync.ProfileTimeout,
		HistoryTimeout: cfg.Sync.HistoryTimeout,
		RetentionDays:  cfg.Sync.RetentionDays,
	})
}

// ProvideAggregator creates the derived-view aggregator.
func ProvideAggregator(
	sync *usecase.Synchronizer,
	st domrepo.Store,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Aggregator {
	return usecase.NewAggregator(sync, st, l, usecase.AggregatorConfig{
		TrendingSymbols:  cfg.Sync.TrendingSymbols,
		MaxBatchSymbols:  cfg.Batch.MaxSymbols,
		BatchConcurrency: cfg.Batch.Concurrency,
	})
}

// ProvidePredictionClient creates the forecast service client.
func ProvidePredictionClient(cfg *config.Config) *prediction.Client {
	return prediction.NewClient(prediction.Config{
		URL:     cfg.Prediction.URL,
		Timeout: cfg.Prediction.Timeout,
	})
}

// ProvideStreamer creates the live update loop. When streaming is
// disabled or unconfigured, the streamer carries no stream and Run is a
// no-op.
func ProvideStreamer(
	cfg *config.Config,
	st domrepo.Store,
	m domrepo.Metrics,
	clock domrepo.Clock,
	l *applogger.Logger,
) *usecase.Streamer {
	fh := cfg.Providers.Finnhub
	var qs domrepo.QuoteStream
	if fh.StreamEnabled && fh.APIKey != "" {
		qs = stream.New(stream.Config{
			Token:          fh.APIKey,
			WebsocketURL:   fh.WebSocketURL,
			ReconnectDelay: fh.ReconnectDelay,
			PingInterval:   fh.PingInterval,
		})
	}
	symbols := make([]string, 0, len(cfg.Sync.TrendingSymbols))
	for _, s := range cfg.Sync.TrendingSymbols {
		symbols = append(symbols, usecase.Canonical(s))
	}
	return usecase.NewStreamer(qs, st, m, clock, l, usecase.StreamerConfig{
		Symbols:        symbols,
		ReconnectDelay: fh.ReconnectDelay,
	})
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	agg *usecase.Aggregator,
	sync *usecase.Synchronizer,
	forecasts *prediction.Client,
	st domrepo.Store,
) *api.StocksHandler {
	return api.NewStocksHandler(l, agg, sync, forecasts, st)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.StocksHandler,
	streamer *usecase.Streamer,
	st domrepo.Store,
	sink domrepo.EventSink,
) *server.App {
	return server.New(cfg, l, handler, streamer, st, sink)
}
