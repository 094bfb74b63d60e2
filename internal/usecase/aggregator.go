package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/normalize"
	xlogger "StockPulse/pkg/logger"
)

var (
	// ErrEmptyQuery is returned for a search query that is empty after trimming.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrBatchTooLarge is returned before any work when a batch exceeds the cap.
	ErrBatchTooLarge = errors.New("too many symbols in batch")
)

// tickerMaxLen is the longest query treated as a plausible ticker for the
// search-as-lookup fallback.
const tickerMaxLen = 5

// AggregatorConfig bounds the derived views.
type AggregatorConfig struct {
	TrendingSymbols  []string
	MaxBatchSymbols  int
	BatchConcurrency int
}

func (c *AggregatorConfig) defaults() {
	if len(c.TrendingSymbols) == 0 {
		c.TrendingSymbols = []string{
			"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA",
			"META", "NVDA", "NFLX", "AMD", "PYPL",
		}
	}
	if c.MaxBatchSymbols <= 0 {
		c.MaxBatchSymbols = 50
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 8
	}
}

// Aggregator builds derived views (trending, search, batch, history,
// watchlist enrichment) on top of synchronized records. Every symbol it
// touches goes through Synchronizer.Get, so the TTL and single-flight
// discipline is uniform across direct and derived lookups.
type Aggregator struct {
	sync   *Synchronizer
	store  domrepo.Store
	logger *xlogger.Logger
	cfg    AggregatorConfig
}

// NewAggregator creates the aggregator.
func NewAggregator(sync *Synchronizer, store domrepo.Store, logger *xlogger.Logger, cfg AggregatorConfig) *Aggregator {
	cfg.defaults()
	return &Aggregator{sync: sync, store: store, logger: logger, cfg: cfg}
}

// GetStock returns the canonical view for one symbol.
func (a *Aggregator) GetStock(ctx context.Context, symbol string) (*models.ExternalQuoteView, error) {
	rec, err := a.sync.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	view := normalize.ToCanonical(rec)
	return &view, nil
}

// History returns the trailing `days` window of the stored bar sequence,
// ascending by date.
func (a *Aggregator) History(ctx context.Context, symbol string, days int) ([]models.HistoricalBar, error) {
	rec, err := a.sync.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	cutoff := rec.SyncedAt.AddDate(0, 0, -days)
	out := make([]models.HistoricalBar, 0, len(rec.Bars))
	for _, b := range rec.Bars {
		if b.Date.Before(cutoff) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Trending returns up to limit records: everything already synchronized
// plus the configured widely-held set, deduplicated (first occurrence
// wins), sorted descending by percent change.
func (a *Aggregator) Trending(ctx context.Context, limit int) ([]models.ExternalQuoteView, error) {
	symbols := a.knownSymbols(ctx)
	for _, sym := range a.cfg.TrendingSymbols {
		symbols = append(symbols, Canonical(sym))
	}
	symbols = dedupe(symbols)

	views := a.syncAll(ctx, symbols)
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].ChangePercent > views[j].ChangePercent
	})
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

// Search matches query case-insensitively against symbol and name across
// known records. With zero matches, a query short enough to be a ticker is
// synchronized directly so search doubles as an on-demand lookup.
func (a *Aggregator) Search(ctx context.Context, query string, limit int) ([]models.ExternalQuoteView, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	needle := strings.ToLower(q)

	var matched []string
	entries, err := a.store.All(ctx)
	if err != nil {
		a.logger.Warn("store scan failed", xlogger.Error(err))
	}
	for _, e := range entries {
		sym := strings.ToLower(e.Record.Symbol)
		name := strings.ToLower(e.Record.Profile.Name)
		if strings.Contains(sym, needle) || strings.Contains(name, needle) {
			matched = append(matched, e.Record.Symbol)
		}
	}
	matched = dedupe(matched)
	sort.Strings(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	if len(matched) == 0 {
		if len(q) > tickerMaxLen {
			return []models.ExternalQuoteView{}, nil
		}
		view, err := a.GetStock(ctx, q)
		if err != nil {
			return nil, err
		}
		return []models.ExternalQuoteView{*view}, nil
	}

	return a.syncAll(ctx, matched), nil
}

// Batch synchronizes up to MaxBatchSymbols symbols and partitions the
// outcome. The cap is enforced before any provider work starts, and one
// symbol's failure never fails the whole batch.
func (a *Aggregator) Batch(ctx context.Context, symbols []string) (*models.BatchResult, error) {
	if len(symbols) == 0 {
		return &models.BatchResult{Records: []models.ExternalQuoteView{}, Errors: []models.BatchError{}}, nil
	}
	if len(symbols) > a.cfg.MaxBatchSymbols {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(symbols), a.cfg.MaxBatchSymbols)
	}

	type slot struct {
		view *models.ExternalQuoteView
		err  error
	}
	slots := make([]slot, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.BatchConcurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			view, err := a.getDefensive(gctx, sym)
			slots[i] = slot{view: view, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &models.BatchResult{
		Records: make([]models.ExternalQuoteView, 0, len(symbols)),
		Errors:  []models.BatchError{},
	}
	for i, s := range slots {
		if s.err != nil {
			result.Errors = append(result.Errors, models.BatchError{
				Symbol: strings.TrimSpace(symbols[i]),
				Reason: s.err.Error(),
			})
			continue
		}
		result.Records = append(result.Records, *s.view)
	}
	return result, nil
}

// EnrichWatchlist attaches the current quote view to each item. The
// enrichment is read-only and never persisted.
func (a *Aggregator) EnrichWatchlist(ctx context.Context, items []models.WatchlistItem) []models.EnrichedWatchlistItem {
	out := make([]models.EnrichedWatchlistItem, 0, len(items))
	for _, item := range items {
		enriched := models.EnrichedWatchlistItem{WatchlistItem: item}
		if view, err := a.getDefensive(ctx, item.Symbol); err == nil {
			enriched.Quote = view
		}
		out = append(out, enriched)
	}
	return out
}

// getDefensive shields the aggregation boundary: a panic inside a single
// symbol's synchronization is reported as that symbol's failure.
func (a *Aggregator) getDefensive(ctx context.Context, symbol string) (view *models.ExternalQuoteView, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("synchronization panic", xlogger.String("symbol", symbol), xlogger.Any("panic", r))
			view, err = nil, fmt.Errorf("synchronization failed: %v", r)
		}
	}()
	return a.GetStock(ctx, symbol)
}

// syncAll synchronizes symbols with bounded concurrency, dropping the rare
// per-symbol failure, and preserves input order.
func (a *Aggregator) syncAll(ctx context.Context, symbols []string) []models.ExternalQuoteView {
	views := make([]*models.ExternalQuoteView, len(symbols))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.cfg.BatchConcurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if view, err := a.getDefensive(ctx, sym); err == nil {
				views[i] = view
			}
		}()
	}
	wg.Wait()

	out := make([]models.ExternalQuoteView, 0, len(symbols))
	for _, v := range views {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// knownSymbols lists the symbols already present in the store.
func (a *Aggregator) knownSymbols(ctx context.Context) []string {
	entries, err := a.store.All(ctx)
	if err != nil {
		a.logger.Warn("store scan failed", xlogger.Error(err))
		return nil
	}
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Record.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		c := Canonical(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
