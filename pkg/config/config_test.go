package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
server:
  port: 8080
store:
  backend: memory
sink:
  backend: none
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "test" || cfg.Server.Port != 8080 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
store:
  backend: cassandra
`))
	if err == nil {
		t.Fatalf("unknown store backend accepted")
	}

	_, err = Load(writeConfig(t, `
environment: test
sink:
  backend: rabbitmq
`))
	if err == nil {
		t.Fatalf("unknown sink backend accepted")
	}
}

func TestLoadRequiresRedisHost(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
store:
  backend: redis
`))
	if err == nil {
		t.Fatalf("redis backend without host accepted")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-token")
	t.Setenv("TRENDING_SYMBOLS", "AAPL,MSFT")
	t.Setenv("SINK_BACKEND", "none")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.Finnhub.APIKey != "env-token" {
		t.Fatalf("api key override lost")
	}
	if len(cfg.Sync.TrendingSymbols) != 2 || cfg.Sync.TrendingSymbols[1] != "MSFT" {
		t.Fatalf("symbols = %v", cfg.Sync.TrendingSymbols)
	}
}
