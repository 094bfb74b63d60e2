package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	refreshes        *prometheus.CounterVec
	refreshDuration  *prometheus.HistogramVec
	providerFailures *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_hits_total",
				Help: "Fresh cache entries served without a refresh",
			},
			[]string{"symbol"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_misses_total",
				Help: "Lookups that found no fresh cache entry",
			},
			[]string{"symbol"},
		),
		refreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_refreshes_total",
				Help: "Completed record refreshes by provenance",
			},
			[]string{"outcome"},
		),
		refreshDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_refresh_duration_seconds",
				Help:    "Duration of record refreshes in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		providerFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_provider_failures_total",
				Help: "Provider fetch failures by classified kind",
			},
			[]string{"provider", "kind"},
		),
		fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fallbacks_total",
				Help: "Synthetic substitutions by record piece",
			},
			[]string{"piece"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordCacheHit records a lookup served from a fresh entry.
func (r *Recorder) RecordCacheHit(symbol string) {
	r.cacheHits.WithLabelValues(symbol).Inc()
}

// RecordCacheMiss records a lookup that triggered a refresh.
func (r *Recorder) RecordCacheMiss(symbol string) {
	r.cacheMisses.WithLabelValues(symbol).Inc()
}

// RecordRefresh records a completed refresh and its duration.
func (r *Recorder) RecordRefresh(outcome string, seconds float64) {
	r.refreshes.WithLabelValues(outcome).Inc()
	r.refreshDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordProviderFailure records a classified provider failure.
func (r *Recorder) RecordProviderFailure(provider, kind string) {
	r.providerFailures.WithLabelValues(provider, kind).Inc()
}

// RecordFallback records a synthetic substitution for one piece.
func (r *Recorder) RecordFallback(piece string) {
	r.fallbacks.WithLabelValues(piece).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
