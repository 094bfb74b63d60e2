package fallback

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/util"
)

const (
	basePriceMin = 100.0
	basePriceMax = 500.0
	changeMin    = -5.0
	changeMax    = 5.0
	volumeMin    = 1_000_000
	volumeMax    = 6_000_000
	historyDays  = 30
)

// Generator produces schema-valid synthetic market data when a provider is
// down or unconfigured. Output is deterministic per symbol and UTC day, so
// repeated fallbacks within a day agree with each other.
type Generator struct {
	clock domrepo.Clock
}

// New creates a fallback generator.
func New(clock domrepo.Clock) *Generator {
	if clock == nil {
		clock = domrepo.SystemClock{}
	}
	return &Generator{clock: clock}
}

// rng returns a PRNG seeded from the symbol and the current UTC date.
func (g *Generator) rng(symbol string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	_, _ = h.Write([]byte(util.Day(g.clock.Now()).Format("2006-01-02")))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func volume(r *rand.Rand) int64 {
	return int64(uniform(r, volumeMin, volumeMax))
}

// SyntheticQuote returns a plausible quote: price in [100,500), change in
// [-5,5), day range consistent with open and previous close.
func (g *Generator) SyntheticQuote(symbol string) *models.Quote {
	r := g.rng(symbol)
	base := uniform(r, basePriceMin, basePriceMax)
	change := uniform(r, changeMin, changeMax)
	prevClose := base - change
	open := prevClose + uniform(r, changeMin, changeMax)/2
	high := maxf(base, open) + uniform(r, 0, 3)
	low := minf(base, open) - uniform(r, 0, 3)
	if low < 0 {
		low = 0
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         util.Round2(base),
		Change:        util.Round2(change),
		ChangePercent: util.Round2(change / base * 100),
		DayHigh:       util.Round2(high),
		DayLow:        util.Round2(low),
		DayOpen:       util.Round2(open),
		PrevClose:     util.Round2(prevClose),
		Volume:        volume(r),
		ObservedAt:    g.clock.Now(),
		Synthetic:     true,
	}
}

// SyntheticProfile returns a templated company profile for the symbol.
func (g *Generator) SyntheticProfile(symbol string) *models.Profile {
	r := g.rng(symbol + "/profile")
	sector := "Technology"
	marketCap := uniform(r, 1e10, 2e12)
	peRatio := util.Round2(uniform(r, 10, 40))

	return &models.Profile{
		Symbol:   symbol,
		Name:     fmt.Sprintf("%s Inc.", symbol),
		Sector:   &sector,
		Industry: "Software",
		Description: fmt.Sprintf(
			"%s Inc. is a technology company. Live market data is currently unavailable; this profile was generated as a placeholder.",
			symbol),
		MarketCap: &marketCap,
		PERatio:   &peRatio,
		Synthetic: true,
	}
}

// SyntheticHistory returns a 30 trading-day bounded random walk anchored at
// the symbol's synthetic base price. Bars are ascending by date, mutually
// consistent (low <= open,close <= high, low >= 1) and never in the future.
func (g *Generator) SyntheticHistory(symbol string) []models.HistoricalBar {
	r := g.rng(symbol + "/history")
	base := uniform(r, basePriceMin, basePriceMax)
	days := util.PrevTradingDays(g.clock.Now(), historyDays)

	bars := make([]models.HistoricalBar, 0, len(days))
	price := base
	for _, day := range days {
		open := price
		close := open + uniform(r, changeMin, changeMax)
		if close < 1 {
			close = 1
		}
		high := maxf(open, close) + uniform(r, 0, 2)
		low := minf(open, close) - uniform(r, 0, 2)
		if low < 1 {
			low = 1
		}
		bars = append(bars, models.HistoricalBar{
			Symbol: symbol,
			Date:   day,
			Open:   util.Round2(open),
			High:   util.Round2(high),
			Low:    util.Round2(low),
			Close:  util.Round2(close),
			Volume: volume(r),
		})
		price = close
	}
	return bars
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
