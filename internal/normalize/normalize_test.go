package normalize

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func TestToCanonicalFull(t *testing.T) {
	sector := "Technology"
	cap := 3.1e12
	pe := 28.4
	r := &models.StockRecord{
		Symbol: "AAPL",
		Quote: models.Quote{
			Symbol:        "AAPL",
			Price:         187.5,
			Change:        1.25,
			ChangePercent: 0.67,
			Volume:        42_000_000,
		},
		Profile: models.Profile{
			Symbol:    "AAPL",
			Name:      "Apple Inc",
			Sector:    &sector,
			MarketCap: &cap,
			PERatio:   &pe,
		},
		SyncedAt:  time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
		Synthetic: false,
	}

	v := ToCanonical(r)
	if v.Symbol != "AAPL" || v.Name != "Apple Inc" {
		t.Fatalf("identity fields: %+v", v)
	}
	if v.CurrentPrice != 187.5 || v.Change != 1.25 || v.ChangePercent != 0.67 {
		t.Fatalf("quote fields: %+v", v)
	}
	if v.MarketCap == nil || *v.MarketCap != cap {
		t.Fatalf("market cap: %v", v.MarketCap)
	}
	if v.Timestamp != "2025-03-12T10:00:00Z" {
		t.Fatalf("timestamp = %q", v.Timestamp)
	}
	if v.IsSynthetic {
		t.Fatalf("synthetic flag set on real record")
	}
}

func TestToCanonicalAbsentOptionalFields(t *testing.T) {
	r := &models.StockRecord{
		Symbol:    "ZZZZ",
		Quote:     models.Quote{Symbol: "ZZZZ", Price: 10},
		Profile:   models.Profile{Symbol: "ZZZZ"},
		SyncedAt:  time.Now(),
		Synthetic: true,
	}
	v := ToCanonical(r)
	// Name falls back to the symbol; optional fields stay absent, not zero.
	if v.Name != "ZZZZ" {
		t.Fatalf("name = %q", v.Name)
	}
	if v.MarketCap != nil || v.PERatio != nil || v.Sector != nil {
		t.Fatalf("optional fields should be nil: %+v", v)
	}
	if !v.IsSynthetic {
		t.Fatalf("synthetic flag lost")
	}
}

func TestToCanonicalAllPreservesOrder(t *testing.T) {
	records := []*models.StockRecord{
		{Symbol: "B", SyncedAt: time.Now()},
		{Symbol: "A", SyncedAt: time.Now()},
	}
	views := ToCanonicalAll(records)
	if len(views) != 2 || views[0].Symbol != "B" || views[1].Symbol != "A" {
		t.Fatalf("order not preserved: %+v", views)
	}
}
