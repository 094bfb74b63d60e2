package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain/models"
)

func seedEntry(t *testing.T, f *syncFixture, symbol, name string, changePercent float64) {
	t.Helper()
	entry := &models.CacheEntry{
		Record: models.StockRecord{
			Symbol:   symbol,
			Quote:    models.Quote{Symbol: symbol, Price: 100, ChangePercent: changePercent},
			Profile:  models.Profile{Symbol: symbol, Name: name},
			SyncedAt: f.clock.Now(),
		},
		Deadline: f.clock.Now().Add(5 * time.Minute),
	}
	require.NoError(t, f.store.Put(context.Background(), entry))
}

func newAggFixture(t *testing.T, cfg AggregatorConfig) (*Aggregator, *syncFixture) {
	t.Helper()
	f := newSyncFixture(SyncConfig{})
	agg := NewAggregator(f.sync, f.store, f.sync.logger, cfg)
	return agg, f
}

func TestTrendingSortedByChangePercent(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{TrendingSymbols: []string{"AAA"}})
	seedEntry(t, f, "AAA", "Alpha", 1.5)
	seedEntry(t, f, "BBB", "Beta", 4.2)
	seedEntry(t, f, "CCC", "Gamma", -2.0)

	views, err := agg.Trending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, views, 3)
	require.Equal(t, "BBB", views[0].Symbol)
	require.Equal(t, "AAA", views[1].Symbol)
	require.Equal(t, "CCC", views[2].Symbol)

	// No provider work for fresh entries.
	require.EqualValues(t, 0, f.quotes.calls.Load())
}

func TestTrendingLimit(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{TrendingSymbols: []string{"AAA"}})
	seedEntry(t, f, "AAA", "Alpha", 1)
	seedEntry(t, f, "BBB", "Beta", 2)
	seedEntry(t, f, "CCC", "Gamma", 3)

	views, err := agg.Trending(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "CCC", views[0].Symbol)
}

func TestSearchMatchesSymbolAndName(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{})
	seedEntry(t, f, "AAPL", "Apple Inc", 1)
	seedEntry(t, f, "MSFT", "Microsoft Corp", 2)

	views, err := agg.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "AAPL", views[0].Symbol)
}

func TestSearchEmptyQuery(t *testing.T) {
	agg, _ := newAggFixture(t, AggregatorConfig{})
	_, err := agg.Search(context.Background(), "   ", 10)
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchTickerFallback(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{})

	// No known records: a short query is treated as a ticker lookup.
	views, err := agg.Search(context.Background(), "nflx", 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "NFLX", views[0].Symbol)
	require.EqualValues(t, 1, f.quotes.calls.Load())
}

func TestSearchLongQueryNoFallback(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{})

	views, err := agg.Search(context.Background(), "nonexistent company", 10)
	require.NoError(t, err)
	require.Empty(t, views)
	require.EqualValues(t, 0, f.quotes.calls.Load())
}

func TestBatchCapEnforcedBeforeWork(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{MaxBatchSymbols: 3})
	symbols := []string{"A", "B", "C", "D"}

	_, err := agg.Batch(context.Background(), symbols)
	require.ErrorIs(t, err, ErrBatchTooLarge)
	require.EqualValues(t, 0, f.quotes.calls.Load(), "cap must reject before any provider work")
}

func TestBatchPartitionsOutcomes(t *testing.T) {
	agg, _ := newAggFixture(t, AggregatorConfig{})

	result, err := agg.Batch(context.Background(), []string{"AAPL", "   ", "TSLA"})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "", result.Errors[0].Symbol)
	require.NotEmpty(t, result.Errors[0].Reason)
}

func TestBatchEmpty(t *testing.T) {
	agg, _ := newAggFixture(t, AggregatorConfig{})
	result, err := agg.Batch(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, result.Records)
	require.NotNil(t, result.Errors)
	require.Empty(t, result.Records)
}

func TestHistoryTrailingWindow(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{})
	f.history.bars = []models.HistoricalBar{
		bar(syncTestNow.AddDate(0, 0, -10), 100),
		bar(syncTestNow.AddDate(0, 0, -5), 101),
		bar(syncTestNow.AddDate(0, 0, -1), 102),
	}

	bars, err := agg.History(context.Background(), "AAPL", 7)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	require.Equal(t, 101.0, bars[0].Close)
	require.Equal(t, 102.0, bars[1].Close)
}

func TestEnrichWatchlist(t *testing.T) {
	agg, f := newAggFixture(t, AggregatorConfig{})
	seedEntry(t, f, "AAPL", "Apple Inc", 1)

	alert := 200.0
	items := []models.WatchlistItem{
		{Symbol: "AAPL", AlertPrice: &alert},
		{Symbol: "   "}, // unsyncable: enrichment stays nil
	}
	enriched := agg.EnrichWatchlist(context.Background(), items)
	require.Len(t, enriched, 2)
	require.NotNil(t, enriched[0].Quote)
	require.Equal(t, "AAPL", enriched[0].Quote.Symbol)
	require.Nil(t, enriched[1].Quote)
}
