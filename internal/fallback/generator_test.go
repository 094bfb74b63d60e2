package fallback

import (
	"testing"
	"time"

	"StockPulse/pkg/util"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 12, 15, 4, 5, 0, time.UTC)

func newTestGenerator() *Generator {
	return New(fixedClock{now: testNow})
}

func TestSyntheticQuoteBounds(t *testing.T) {
	g := newTestGenerator()
	for _, sym := range []string{"AAPL", "TSLA", "ZZZZ", "X"} {
		q := g.SyntheticQuote(sym)
		if q.Symbol != sym {
			t.Fatalf("symbol = %q, want %q", q.Symbol, sym)
		}
		if q.Price < 100 || q.Price >= 500 {
			t.Fatalf("%s price %v out of [100,500)", sym, q.Price)
		}
		if q.Change < -5 || q.Change >= 5 {
			t.Fatalf("%s change %v out of [-5,5)", sym, q.Change)
		}
		approxPct := q.Change / q.Price * 100
		if q.ChangePercent < approxPct-0.02 || q.ChangePercent > approxPct+0.02 {
			t.Fatalf("%s change_percent = %v, want ~%v", sym, q.ChangePercent, approxPct)
		}
		if q.Volume < 1_000_000 || q.Volume >= 6_000_000 {
			t.Fatalf("%s volume %v out of [1e6,6e6)", sym, q.Volume)
		}
		if !q.Synthetic {
			t.Fatalf("%s quote not marked synthetic", sym)
		}
	}
}

func TestSyntheticQuoteDeterministicPerDay(t *testing.T) {
	a := newTestGenerator().SyntheticQuote("MSFT")
	b := newTestGenerator().SyntheticQuote("MSFT")
	if a.Price != b.Price || a.Change != b.Change || a.Volume != b.Volume {
		t.Fatalf("same symbol and day disagree: %+v vs %+v", a, b)
	}

	// Later the same UTC day still agrees.
	later := New(fixedClock{now: testNow.Add(6 * time.Hour)})
	c := later.SyntheticQuote("MSFT")
	if a.Price != c.Price {
		t.Fatalf("same day, different hour disagrees: %v vs %v", a.Price, c.Price)
	}

	// The next day does not.
	tomorrow := New(fixedClock{now: testNow.AddDate(0, 0, 1)})
	d := tomorrow.SyntheticQuote("MSFT")
	if a.Price == d.Price && a.Volume == d.Volume {
		t.Fatalf("next day produced identical quote")
	}
}

func TestSyntheticQuoteVariesAcrossSymbols(t *testing.T) {
	g := newTestGenerator()
	a := g.SyntheticQuote("AAPL")
	b := g.SyntheticQuote("GOOG")
	if a.Price == b.Price && a.Volume == b.Volume {
		t.Fatalf("different symbols produced identical quotes")
	}
}

func TestSyntheticProfileTemplate(t *testing.T) {
	g := newTestGenerator()
	p := g.SyntheticProfile("NVDA")
	if p.Name != "NVDA Inc." {
		t.Fatalf("name = %q", p.Name)
	}
	if p.Sector == nil || *p.Sector != "Technology" {
		t.Fatalf("sector = %v", p.Sector)
	}
	if p.Industry != "Software" {
		t.Fatalf("industry = %q", p.Industry)
	}
	if p.MarketCap == nil || *p.MarketCap <= 0 {
		t.Fatalf("market cap = %v", p.MarketCap)
	}
	if !p.Synthetic {
		t.Fatalf("profile not marked synthetic")
	}
}

func TestSyntheticHistoryShape(t *testing.T) {
	g := newTestGenerator()
	bars := g.SyntheticHistory("AMD")
	if len(bars) != 30 {
		t.Fatalf("len = %d, want 30", len(bars))
	}
	for i, b := range bars {
		if !b.Valid() {
			t.Fatalf("bar %d violates OHLC invariants: %+v", i, b)
		}
		if b.Low < 1 {
			t.Fatalf("bar %d low %v < 1", i, b.Low)
		}
		if !util.IsTradingDay(b.Date) {
			t.Fatalf("bar %d on a weekend: %v", i, b.Date)
		}
		if b.Date.After(testNow) {
			t.Fatalf("bar %d in the future: %v", i, b.Date)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			t.Fatalf("bars not ascending at %d", i)
		}
	}
	// Random walk: each bar opens at the previous close.
	for i := 1; i < len(bars); i++ {
		if bars[i].Open != bars[i-1].Close {
			t.Fatalf("bar %d open %v != previous close %v", i, bars[i].Open, bars[i-1].Close)
		}
	}
}

func TestSyntheticHistoryDeterministic(t *testing.T) {
	a := newTestGenerator().SyntheticHistory("INTC")
	b := newTestGenerator().SyntheticHistory("INTC")
	if len(a) != len(b) {
		t.Fatalf("lengths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
