package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// NoopSink discards sync events; the default when no backend is configured.
type NoopSink struct{}

// NewNoopSink creates the discarding sink.
func NewNoopSink() domrepo.EventSink { return NoopSink{} }

func (NoopSink) Publish(context.Context, *models.SyncEvent) error { return nil }

func (NoopSink) Close() error { return nil }
