package store

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

func entryFor(symbol string, price float64) *models.CacheEntry {
	return &models.CacheEntry{
		Record: models.StockRecord{
			Symbol:   symbol,
			Quote:    models.Quote{Symbol: symbol, Price: price},
			SyncedAt: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
		},
		Deadline: time.Date(2025, 3, 12, 10, 5, 0, 0, time.UTC),
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "AAPL"); err != nil || ok {
		t.Fatalf("empty store Get = ok=%v err=%v", ok, err)
	}

	if err := s.Put(ctx, entryFor("AAPL", 187.5)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.Get(ctx, "AAPL")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Record.Quote.Price != 187.5 {
		t.Fatalf("price = %v", got.Record.Quote.Price)
	}

	// Put replaces wholesale.
	if err := s.Put(ctx, entryFor("AAPL", 190.0)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _, _ = s.Get(ctx, "AAPL")
	if got.Record.Quote.Price != 190.0 {
		t.Fatalf("price after replace = %v", got.Record.Quote.Price)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Put(ctx, entryFor("TSLA", 250))

	a, _, _ := s.Get(ctx, "TSLA")
	a.Record.Quote.Price = 1

	b, _, _ := s.Get(ctx, "TSLA")
	if b.Record.Quote.Price != 250 {
		t.Fatalf("mutating a returned entry leaked into the store")
	}
}

func TestMemoryStoreAll(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, sym := range []string{"A", "B", "C"} {
		_ = s.Put(ctx, entryFor(sym, 100))
	}
	entries, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
}

func TestMemoryStoreKind(t *testing.T) {
	if kind := NewMemoryStore().Kind(); kind != domrepo.StoreMemory {
		t.Fatalf("kind = %v", kind)
	}
}
