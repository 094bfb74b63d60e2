package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// SchemaStatements creates the sync event archive table (idempotent).
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sync_events (
			synced_at          DateTime64(3) CODEC(Delta, ZSTD),
			symbol             LowCardinality(String),
			synthetic          UInt8,
			quote_synthetic    UInt8,
			profile_synthetic  UInt8,
			history_synthetic  UInt8,
			bar_count          UInt32,
			duration_ms        UInt64
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(synced_at)
		ORDER BY (symbol, synced_at)
		TTL toDateTime(synced_at) + INTERVAL 90 DAY`, database),
	}
}

// ClickHouseSink archives sync events into ClickHouse for offline
// analysis of provider reliability and fallback rates.
type ClickHouseSink struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseSink creates the archive sink. The schema must already be
// initialized via pkg/clickhouse Client.InitSchema with SchemaStatements.
func NewClickHouseSink(ch *pkgch.Client, database string, l *applogger.Logger) domrepo.EventSink {
	return &ClickHouseSink{
		db:    ch.DB(),
		table: database + ".sync_events",
		l:     l,
	}
}

func (s *ClickHouseSink) Publish(ctx context.Context, ev *models.SyncEvent) error {
	start := time.Now()
	q := fmt.Sprintf(`INSERT INTO %s
		(synced_at, symbol, synthetic, quote_synthetic, profile_synthetic, history_synthetic, bar_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		ev.SyncedAt,
		ev.Symbol,
		boolToUint8(ev.Synthetic),
		boolToUint8(ev.QuoteSynthetic),
		boolToUint8(ev.ProfileSynthetic),
		boolToUint8(ev.HistorySynthetic),
		uint32(ev.BarCount),
		uint64(ev.DurationMS),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse sync_events insert error",
				applogger.String("symbol", ev.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("insert sync event: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse sync_events insert ok",
			applogger.String("symbol", ev.Symbol),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *ClickHouseSink) Close() error {
	return nil // pool owned by pkg/clickhouse Client
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
