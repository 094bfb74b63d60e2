package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// StoreKind tags the store backend selected at startup. It is passed
// explicitly into the synchronizer instead of being inspected as ambient
// global state.
type StoreKind string

const (
	StoreDurable StoreKind = "durable"
	StoreMemory  StoreKind = "memory"
)

// Store is the single shared mutable resource: one CacheEntry per symbol.
// Put replaces the whole entry atomically with respect to concurrent
// readers; a reader sees either the old or the new record, never a mix.
type Store interface {
	Get(ctx context.Context, symbol string) (*models.CacheEntry, bool, error)
	Put(ctx context.Context, entry *models.CacheEntry) error
	All(ctx context.Context) ([]*models.CacheEntry, error)
	Kind() StoreKind
	Close() error
}

// EventSink receives a SyncEvent after every refresh. Publish failures are
// absorbed by the caller; a sink never blocks a synchronization result.
type EventSink interface {
	Publish(ctx context.Context, ev *models.SyncEvent) error
	Close() error
}

// QuoteStream delivers live trades over a persistent connection.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Close() error
}

// Metrics is the observability contract for the engine.
type Metrics interface {
	RecordCacheHit(symbol string)
	RecordCacheMiss(symbol string)
	RecordRefresh(outcome string, seconds float64)
	RecordProviderFailure(provider, kind string)
	RecordFallback(piece string)
	RecordLastPrice(symbol string, price float64)
}

// Clock abstracts wall time so freshness checks are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
