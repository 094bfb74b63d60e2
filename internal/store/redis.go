package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// RedisConfig holds connection settings for the durable store.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

// RedisOption configures RedisStore.
type RedisOption func(*RedisConfig)

// WithAddr sets host and port.
func WithAddr(host string, port int) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
		c.Port = port
	}
}

// WithAuth sets password and database index.
func WithAuth(password string, db int) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
		c.DB = db
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// RedisStore is the durable backend: one JSON document per symbol plus a
// set of known symbols for enumeration. Entries carry no Redis expiry; the
// synchronizer computes freshness from the embedded deadline, and stale
// records are superseded, never deleted.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the durable backend. Callers fall back
// to the in-memory store when this returns an error.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "stockpulse",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, symbol string) (*models.CacheEntry, bool, error) {
	data, err := s.client.Get(ctx, s.recordKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", symbol, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode entry %s: %w", symbol, err)
	}
	return &entry, true, nil
}

func (s *RedisStore) Put(ctx context.Context, entry *models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.Record.Symbol, err)
	}

	// SET + SADD in one transaction so the symbol set never references a
	// missing document.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(entry.Record.Symbol), data, 0)
	pipe.SAdd(ctx, s.symbolsKey(), entry.Record.Symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %s: %w", entry.Record.Symbol, err)
	}
	return nil
}

func (s *RedisStore) All(ctx context.Context) ([]*models.CacheEntry, error) {
	symbols, err := s.client.SMembers(ctx, s.symbolsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = s.recordKey(sym)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]*models.CacheEntry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry models.CacheEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		out = append(out, &entry)
	}
	return out, nil
}

func (s *RedisStore) Kind() domrepo.StoreKind { return domrepo.StoreDurable }

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) recordKey(symbol string) string {
	return fmt.Sprintf("%s:stock:%s", s.prefix, symbol)
}

func (s *RedisStore) symbolsKey() string {
	return fmt.Sprintf("%s:symbols", s.prefix)
}
