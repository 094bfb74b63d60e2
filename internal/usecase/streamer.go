package usecase

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// StreamerConfig bounds the live update loop.
type StreamerConfig struct {
	Symbols        []string
	ReconnectDelay time.Duration
	// UpdatesPerSec caps store writes per symbol; bursts above the cap
	// are dropped, not queued.
	UpdatesPerSec float64
}

func (c *StreamerConfig) defaults() {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.UpdatesPerSec <= 0 {
		c.UpdatesPerSec = 1
	}
}

// Streamer applies live trade prices to already-synchronized records. It
// only ever touches fresh entries: a stale or missing record is left for
// the synchronizer, so the stream can never resurrect expired data.
type Streamer struct {
	stream  domrepo.QuoteStream
	store   domrepo.Store
	metrics domrepo.Metrics
	clock   domrepo.Clock
	limiter *ratelimit.Limiter
	logger  *xlogger.Logger
	cfg     StreamerConfig
}

// NewStreamer creates the live update loop.
func NewStreamer(
	stream domrepo.QuoteStream,
	store domrepo.Store,
	metrics domrepo.Metrics,
	clock domrepo.Clock,
	logger *xlogger.Logger,
	cfg StreamerConfig,
) *Streamer {
	cfg.defaults()
	if clock == nil {
		clock = domrepo.SystemClock{}
	}
	return &Streamer{
		stream:  stream,
		store:   store,
		metrics: metrics,
		clock:   clock,
		limiter: ratelimit.New(),
		logger:  logger,
		cfg:     cfg,
	}
}

// Run connects, subscribes and consumes the stream until ctx is done,
// reconnecting with a fixed delay after any failure.
func (s *Streamer) Run(ctx context.Context) {
	if s.stream == nil || len(s.cfg.Symbols) == 0 {
		return
	}
	for {
		if err := s.runOnce(ctx); err != nil {
			s.logger.Warn("stream session ended", xlogger.Error(err))
		}
		select {
		case <-ctx.Done():
			_ = s.stream.Close()
			return
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

func (s *Streamer) runOnce(ctx context.Context) error {
	if err := s.stream.Connect(ctx); err != nil {
		return err
	}
	if err := s.stream.Subscribe(ctx, s.cfg.Symbols); err != nil {
		_ = s.stream.Close()
		return err
	}
	s.logger.Info("stream connected", xlogger.Strings("symbols", s.cfg.Symbols))

	quotes, errs := s.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			_ = s.stream.Close()
			return ctx.Err()
		case err, ok := <-errs:
			_ = s.stream.Close()
			if !ok {
				return nil
			}
			return err
		case q, ok := <-quotes:
			if !ok {
				_ = s.stream.Close()
				return nil
			}
			s.apply(ctx, q)
		}
	}
}

// apply folds one live trade into the stored record, if one is fresh.
func (s *Streamer) apply(ctx context.Context, q *models.Quote) {
	sym := Canonical(q.Symbol)
	if sym == "" || q.Price <= 0 {
		return
	}
	if !s.limiter.Allow(sym, s.cfg.UpdatesPerSec, s.cfg.UpdatesPerSec) {
		return
	}

	entry, ok, err := s.store.Get(ctx, sym)
	if err != nil || !ok || !entry.Fresh(s.clock.Now()) {
		return
	}

	quote := &entry.Record.Quote
	quote.Price = q.Price
	if quote.PrevClose > 0 {
		quote.Change = util.Round2(q.Price - quote.PrevClose)
		quote.ChangePercent = util.Round2(quote.Change / quote.PrevClose * 100)
	}
	if q.Price > quote.DayHigh {
		quote.DayHigh = q.Price
	}
	if quote.DayLow == 0 || q.Price < quote.DayLow {
		quote.DayLow = q.Price
	}
	quote.Volume += q.Volume
	quote.ObservedAt = q.ObservedAt

	if err := s.store.Put(ctx, entry); err != nil {
		s.logger.Warn("stream store write failed", xlogger.String("symbol", sym), xlogger.Error(err))
		return
	}
	s.metrics.RecordLastPrice(sym, q.Price)
}
