package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Providers struct {
		Finnhub struct {
			APIKey         string        `yaml:"api_key"`
			BaseURL        string        `yaml:"base_url"`
			WebSocketURL   string        `yaml:"websocket_url"`
			StreamEnabled  bool          `yaml:"stream_enabled"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
		} `yaml:"finnhub"`
		AlphaVantage struct {
			APIKey  string `yaml:"api_key"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"alphavantage"`
	} `yaml:"providers"`
	Sync struct {
		TTL             time.Duration `yaml:"ttl"`
		QuoteTimeout    time.Duration `yaml:"quote_timeout"`
		ProfileTimeout  time.Duration `yaml:"profile_timeout"`
		HistoryTimeout  time.Duration `yaml:"history_timeout"`
		RetentionDays   int           `yaml:"retention_days"`
		TrendingSymbols []string      `yaml:"trending_symbols"`
	} `yaml:"sync"`
	Batch struct {
		MaxSymbols  int `yaml:"max_symbols"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"batch"`
	Store struct {
		Backend string `yaml:"backend"` // memory or redis
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Sink struct {
		Backend string `yaml:"backend"` // none, kafka or clickhouse
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchSize    int           `yaml:"batch_size"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
		ClickHouse struct {
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port"`
			Database         string        `yaml:"database"`
			User             string        `yaml:"user"`
			Password         string        `yaml:"password"`
			UseHTTP          bool          `yaml:"use_http"`
			AsyncInsert      bool          `yaml:"async_insert"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout"`
			ReadTimeout      time.Duration `yaml:"read_timeout"`
			WriteTimeout     time.Duration `yaml:"write_timeout"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		} `yaml:"clickhouse"`
	} `yaml:"sink"`
	Prediction struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"prediction"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("TRENDING_SYMBOLS"); v != "" {
		c.Sync.TrendingSymbols = strings.Split(v, ",")
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Store.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := os.Getenv("SINK_BACKEND"); v != "" {
		c.Sink.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Sink.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Sink.Kafka.Topic = v
	}
	if v := os.Getenv("PREDICTION_URL"); v != "" {
		c.Prediction.URL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Store.Backend {
	case "", "memory":
	case "redis":
		if c.Store.Redis.Host == "" {
			return fmt.Errorf("store.redis.host is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be 'memory' or 'redis', got '%s'", c.Store.Backend)
	}
	switch c.Sink.Backend {
	case "", "none":
	case "kafka":
		if len(c.Sink.Kafka.Brokers) == 0 {
			return fmt.Errorf("sink.kafka.brokers cannot be empty for the kafka backend")
		}
		if c.Sink.Kafka.Topic == "" {
			return fmt.Errorf("sink.kafka.topic is required for the kafka backend")
		}
	case "clickhouse":
		if c.Sink.ClickHouse.Host == "" {
			return fmt.Errorf("sink.clickhouse.host is required for the clickhouse backend")
		}
	default:
		return fmt.Errorf("sink.backend must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Sink.Backend)
	}
	if c.Sync.RetentionDays < 0 {
		return fmt.Errorf("sync.retention_days cannot be negative")
	}
	return nil
}
