package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/store"
	xlogger "StockPulse/pkg/logger"
)

func newStreamFixture(t *testing.T) (*Streamer, *store.MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: syncTestNow}
	st := store.NewMemoryStore()
	s := NewStreamer(nil, st, nopMetrics{}, clock, xlogger.Nop(), StreamerConfig{
		Symbols:       []string{"AAPL"},
		UpdatesPerSec: 1000, // throttle out of the way for these tests
	})
	return s, st, clock
}

func freshEntry(clock *fakeClock, symbol string, price, prevClose float64) *models.CacheEntry {
	return &models.CacheEntry{
		Record: models.StockRecord{
			Symbol: symbol,
			Quote: models.Quote{
				Symbol:    symbol,
				Price:     price,
				PrevClose: prevClose,
				DayHigh:   price,
				DayLow:    price,
				Volume:    1000,
			},
			SyncedAt: clock.Now(),
		},
		Deadline: clock.Now().Add(5 * time.Minute),
	}
}

func TestApplyUpdatesFreshEntry(t *testing.T) {
	s, st, clock := newStreamFixture(t)
	ctx := context.Background()
	_ = st.Put(ctx, freshEntry(clock, "AAPL", 187.5, 186.0))

	s.apply(ctx, &models.Quote{Symbol: "aapl", Price: 190.0, Volume: 500, ObservedAt: clock.Now()})

	entry, ok, _ := st.Get(ctx, "AAPL")
	if !ok {
		t.Fatalf("entry vanished")
	}
	q := entry.Record.Quote
	if q.Price != 190.0 {
		t.Fatalf("price = %v", q.Price)
	}
	if q.Change != 4.0 {
		t.Fatalf("change = %v, want 4.0 against prev close", q.Change)
	}
	if q.DayHigh != 190.0 {
		t.Fatalf("day high not raised: %v", q.DayHigh)
	}
	if q.Volume != 1500 {
		t.Fatalf("volume = %v, want accumulated", q.Volume)
	}
}

func TestApplyIgnoresStaleEntry(t *testing.T) {
	s, st, clock := newStreamFixture(t)
	ctx := context.Background()
	_ = st.Put(ctx, freshEntry(clock, "AAPL", 187.5, 186.0))

	clock.Advance(10 * time.Minute) // entry expired

	s.apply(ctx, &models.Quote{Symbol: "AAPL", Price: 190.0, ObservedAt: clock.Now()})

	entry, _, _ := st.Get(ctx, "AAPL")
	if entry.Record.Quote.Price != 187.5 {
		t.Fatalf("stale entry was updated: %v", entry.Record.Quote.Price)
	}
}

func TestApplyIgnoresUnknownSymbolAndBadPrice(t *testing.T) {
	s, st, _ := newStreamFixture(t)
	ctx := context.Background()

	// No entry at all: nothing to resurrect.
	s.apply(ctx, &models.Quote{Symbol: "TSLA", Price: 250})
	if _, ok, _ := st.Get(ctx, "TSLA"); ok {
		t.Fatalf("stream created an entry")
	}

	// Zero and negative prices are discarded.
	s.apply(ctx, &models.Quote{Symbol: "TSLA", Price: 0})
	s.apply(ctx, &models.Quote{Symbol: "", Price: 10})
}
