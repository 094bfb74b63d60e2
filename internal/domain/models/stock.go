package models

import (
	"math"
	"time"
)

// Provenance of a piece of market data.
const (
	SourceReal      = "real"
	SourceSynthetic = "synthetic"
)

// Quote is the latest traded state of a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	DayOpen       float64   `json:"day_open"`
	PrevClose     float64   `json:"prev_close"`
	Volume        int64     `json:"volume"`
	ObservedAt    time.Time `json:"observed_at"`
	Synthetic     bool      `json:"synthetic"`
}

// Profile describes the company behind a symbol. MarketCap, PERatio and
// Sector are optional upstream: nil means unknown, which is distinct from 0.
type Profile struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Sector      *string  `json:"sector,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Description string   `json:"description,omitempty"`
	MarketCap   *float64 `json:"market_cap,omitempty"`
	PERatio     *float64 `json:"pe_ratio,omitempty"`
	Synthetic   bool     `json:"synthetic"`
}

// HistoricalBar is one daily OHLCV bar. Date is truncated to UTC midnight
// and unique per symbol+date.
type HistoricalBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Valid reports whether the bar satisfies the OHLC invariants.
func (b *HistoricalBar) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close {
		return false
	}
	return b.Volume >= 0
}

// StockRecord is the merged canonical unit held by the store: quote plus
// profile plus the ordered daily bar sequence. Bars are sorted ascending by
// date and carry the record's own symbol; no bar is dated after SyncedAt.
type StockRecord struct {
	Symbol    string          `json:"symbol"`
	Quote     Quote           `json:"quote"`
	Profile   Profile         `json:"profile"`
	Bars      []HistoricalBar `json:"bars"`
	SyncedAt  time.Time       `json:"synced_at"`
	Synthetic bool            `json:"synthetic"`
}

// Provenance returns the record-level provenance flag as a string.
func (r *StockRecord) Provenance() string {
	if r.Synthetic {
		return SourceSynthetic
	}
	return SourceReal
}

// CacheEntry wraps a StockRecord with its freshness deadline
// (SyncedAt + TTL). An entry is fresh iff now < Deadline.
type CacheEntry struct {
	Record   StockRecord `json:"record"`
	Deadline time.Time   `json:"deadline"`
}

// Fresh reports whether the entry is still within its TTL at the given time.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.Deadline)
}

// ExternalQuoteView is the one canonical schema all consumers depend on.
// Optional fields stay nil when the upstream never provided them.
type ExternalQuoteView struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  float64  `json:"current_price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"change_percent"`
	Volume        int64    `json:"volume"`
	MarketCap     *float64 `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	Sector        *string  `json:"sector"`
	Timestamp     string   `json:"timestamp"`
	IsSynthetic   bool     `json:"is_synthetic"`
}

// WatchlistItem belongs to the watchlist service; it is consumed read-only
// here and enriched with the current quote view on the way out.
type WatchlistItem struct {
	Symbol     string   `json:"symbol"`
	AlertPrice *float64 `json:"alert_price,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// EnrichedWatchlistItem is a WatchlistItem with the live quote attached.
// The enrichment is never persisted.
type EnrichedWatchlistItem struct {
	WatchlistItem
	Quote *ExternalQuoteView `json:"quote"`
}

// SyncEvent is emitted to the configured event sink after every refresh.
type SyncEvent struct {
	Symbol           string    `json:"symbol"`
	Synthetic        bool      `json:"synthetic"`
	QuoteSynthetic   bool      `json:"quote_synthetic"`
	ProfileSynthetic bool      `json:"profile_synthetic"`
	HistorySynthetic bool      `json:"history_synthetic"`
	BarCount         int       `json:"bar_count"`
	DurationMS       int64     `json:"duration_ms"`
	SyncedAt         time.Time `json:"synced_at"`
}

// BatchError reports a symbol whose synchronization failed inside a batch.
type BatchError struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// BatchResult partitions a batch lookup into synchronized records and
// per-symbol failures.
type BatchResult struct {
	Records []ExternalQuoteView `json:"records"`
	Errors  []BatchError        `json:"errors"`
}
