package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/fallback"
	"StockPulse/internal/provider"
	xlogger "StockPulse/pkg/logger"
)

// ErrEmptySymbol is returned for a symbol that is empty after trimming.
var ErrEmptySymbol = errors.New("symbol is empty")

// SyncConfig holds the freshness and timeout policy of the synchronizer.
type SyncConfig struct {
	TTL            time.Duration
	QuoteTimeout   time.Duration
	ProfileTimeout time.Duration
	HistoryTimeout time.Duration
	RetentionDays  int
}

func (c *SyncConfig) defaults() {
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	if c.QuoteTimeout <= 0 {
		c.QuoteTimeout = 3 * time.Second
	}
	if c.ProfileTimeout <= 0 {
		c.ProfileTimeout = 3 * time.Second
	}
	if c.HistoryTimeout <= 0 {
		c.HistoryTimeout = 5 * time.Second
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 365
	}
}

// Synchronizer owns the freshness policy per symbol. Get never fails for
// upstream reasons: any provider failure is replaced by synthetic data for
// that piece only, and store failures are absorbed.
type Synchronizer struct {
	store    domrepo.Store
	quotes   provider.QuoteSource
	profiles provider.ProfileSource
	history  provider.HistorySource
	fb       *fallback.Generator
	sink     domrepo.EventSink
	metrics  domrepo.Metrics
	clock    domrepo.Clock
	logger   *xlogger.Logger
	cfg      SyncConfig

	sf singleflight.Group
}

// NewSynchronizer creates the record synchronizer.
func NewSynchronizer(
	store domrepo.Store,
	quotes provider.QuoteSource,
	profiles provider.ProfileSource,
	history provider.HistorySource,
	fb *fallback.Generator,
	sink domrepo.EventSink,
	metrics domrepo.Metrics,
	clock domrepo.Clock,
	logger *xlogger.Logger,
	cfg SyncConfig,
) *Synchronizer {
	cfg.defaults()
	if clock == nil {
		clock = domrepo.SystemClock{}
	}
	return &Synchronizer{
		store:    store,
		quotes:   quotes,
		profiles: profiles,
		history:  history,
		fb:       fb,
		sink:     sink,
		metrics:  metrics,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
}

// Canonical normalizes a raw symbol: trimmed, uppercased.
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// TTL returns the configured freshness window.
func (s *Synchronizer) TTL() time.Duration { return s.cfg.TTL }

// Get returns the record for symbol, refreshing it when stale or missing.
// Concurrent callers for the same symbol share one in-flight refresh.
func (s *Synchronizer) Get(ctx context.Context, symbol string) (*models.StockRecord, error) {
	sym := Canonical(symbol)
	if sym == "" {
		return nil, ErrEmptySymbol
	}

	if entry, ok := s.lookup(ctx, sym); ok {
		s.metrics.RecordCacheHit(sym)
		return &entry.Record, nil
	}
	s.metrics.RecordCacheMiss(sym)

	v, _, _ := s.sf.Do(sym, func() (interface{}, error) {
		// Another caller may have finished a refresh while we waited on
		// the flight lock.
		if entry, ok := s.lookup(ctx, sym); ok {
			return &entry.Record, nil
		}
		// Detach from the first caller's context so its cancellation
		// cannot poison the shared result; provider timeouts still bound
		// every call.
		return s.refresh(context.WithoutCancel(ctx), sym), nil
	})
	return v.(*models.StockRecord), nil
}

// lookup reads the store and reports whether a fresh entry exists. Store
// read errors are absorbed and surface as a miss.
func (s *Synchronizer) lookup(ctx context.Context, sym string) (*models.CacheEntry, bool) {
	entry, ok, err := s.store.Get(ctx, sym)
	if err != nil {
		s.logger.Warn("store read failed", xlogger.String("symbol", sym), xlogger.Error(err))
		return nil, false
	}
	if !ok || !entry.Fresh(s.clock.Now()) {
		return nil, false
	}
	return entry, true
}

// refresh fetches all pieces concurrently, substitutes synthetic data per
// failed piece, merges, and writes the result. It cannot fail.
func (s *Synchronizer) refresh(ctx context.Context, sym string) *models.StockRecord {
	start := time.Now()

	var (
		quote   *models.Quote
		profile *models.Profile
		bars    []models.HistoricalBar
		qSyn    bool
		pSyn    bool
		hSyn    bool
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		quote, qSyn = s.fetchQuote(ctx, sym)
	}()
	go func() {
		defer wg.Done()
		profile, pSyn = s.fetchProfile(ctx, sym)
	}()
	go func() {
		defer wg.Done()
		bars, hSyn = s.fetchHistory(ctx, sym)
	}()
	wg.Wait()

	now := s.clock.Now()
	quote.Symbol = sym
	profile.Symbol = sym
	bars = s.trimBars(bars, sym, now)

	// Some quote feeds omit volume; the newest bar's is the closest stand-in.
	if quote.Volume == 0 && len(bars) > 0 {
		quote.Volume = bars[len(bars)-1].Volume
	}

	record := &models.StockRecord{
		Symbol:    sym,
		Quote:     *quote,
		Profile:   *profile,
		Bars:      bars,
		SyncedAt:  now,
		Synthetic: qSyn || pSyn || hSyn,
	}

	entry := &models.CacheEntry{Record: *record, Deadline: now.Add(s.cfg.TTL)}
	if err := s.store.Put(ctx, entry); err != nil {
		// Durability failure degrades to serving the record uncached.
		s.logger.Warn("store write failed", xlogger.String("symbol", sym), xlogger.Error(err))
	}

	s.emit(ctx, &models.SyncEvent{
		Symbol:           sym,
		Synthetic:        record.Synthetic,
		QuoteSynthetic:   qSyn,
		ProfileSynthetic: pSyn,
		HistorySynthetic: hSyn,
		BarCount:         len(bars),
		DurationMS:       time.Since(start).Milliseconds(),
		SyncedAt:         now,
	})

	s.metrics.RecordRefresh(record.Provenance(), time.Since(start).Seconds())
	s.metrics.RecordLastPrice(sym, quote.Price)
	return record
}

func (s *Synchronizer) fetchQuote(ctx context.Context, sym string) (*models.Quote, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.QuoteTimeout)
	defer cancel()

	q, err := s.quotes.FetchQuote(cctx, sym)
	if err != nil {
		s.noteFailure(s.quotes.Name(), "quote", sym, err)
		return s.fb.SyntheticQuote(sym), true
	}
	return q, false
}

func (s *Synchronizer) fetchProfile(ctx context.Context, sym string) (*models.Profile, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()

	p, err := s.profiles.FetchProfile(cctx, sym)
	if err != nil {
		s.noteFailure(s.profiles.Name(), "profile", sym, err)
		return s.fb.SyntheticProfile(sym), true
	}
	return p, false
}

func (s *Synchronizer) fetchHistory(ctx context.Context, sym string) ([]models.HistoricalBar, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.HistoryTimeout)
	defer cancel()

	bars, err := s.history.FetchDailyBars(cctx, sym)
	if err != nil {
		s.noteFailure(s.history.Name(), "history", sym, err)
		return s.fb.SyntheticHistory(sym), true
	}
	return bars, false
}

func (s *Synchronizer) noteFailure(providerName, piece, sym string, err error) {
	kind := provider.KindOf(err)
	s.metrics.RecordProviderFailure(providerName, string(kind))
	s.metrics.RecordFallback(piece)

	fields := []xlogger.Field{
		xlogger.String("provider", providerName),
		xlogger.String("piece", piece),
		xlogger.String("symbol", sym),
		xlogger.String("kind", string(kind)),
	}
	if provider.Expected(err) {
		s.logger.Info("provider unconfigured, using fallback", fields...)
		return
	}
	s.logger.Warn("provider failed, using fallback", append(fields, xlogger.Error(err))...)
}

// trimBars enforces the retention policy: bars older than the retention
// window or dated after now are dropped; the result is ascending by date
// and stamped with the record's symbol.
func (s *Synchronizer) trimBars(bars []models.HistoricalBar, sym string, now time.Time) []models.HistoricalBar {
	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	out := make([]models.HistoricalBar, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(cutoff) || b.Date.After(now) || !b.Valid() {
			continue
		}
		b.Symbol = sym
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// emit publishes the sync event best-effort.
func (s *Synchronizer) emit(ctx context.Context, ev *models.SyncEvent) {
	if s.sink == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.sink.Publish(cctx, ev); err != nil {
		s.logger.Warn("sync event publish failed", xlogger.String("symbol", ev.Symbol), xlogger.Error(err))
	}
}
