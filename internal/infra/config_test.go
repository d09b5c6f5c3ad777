package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
app:
  name: "TradeDesk"
  version: "test"
market:
  exchange: "paper"
  tick_interval_ms: 1000
  volatility: 0.002
  taker_fee_rate: "0.001"
  window_hours: 24
  symbols:
    - { symbol: "BTCUSDT", base_asset: "BTC", quote_asset: "USDT", base_price: "50000" }
account:
  quote_asset: "USDT"
  starting_balance: "100000"
server:
  listen_addr: ":8080"
logging:
  level: "info"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Valid config loads", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.TickInterval() != time.Second {
			t.Errorf("Expected 1s tick interval, got %v", cfg.TickInterval())
		}
		if cfg.Window() != 24*time.Hour {
			t.Errorf("Expected 24h window, got %v", cfg.Window())
		}
		if len(cfg.Market.Symbols) != 1 || cfg.Market.Symbols[0].Symbol != "BTCUSDT" {
			t.Errorf("Symbol table not parsed: %+v", cfg.Market.Symbols)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("Expected error for missing file")
		}
	})

	t.Run("Env override", func(t *testing.T) {
		t.Setenv("TRADEDESK_LISTEN_ADDR", ":9999")
		cfg, err := LoadConfig(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Server.ListenAddr != ":9999" {
			t.Errorf("Expected env override :9999, got %s", cfg.Server.ListenAddr)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	load := func(t *testing.T, mutate func(*Config)) error {
		cfg, err := LoadConfig(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		mutate(cfg)
		return cfg.Validate()
	}

	t.Run("Zero tick interval", func(t *testing.T) {
		if err := load(t, func(c *Config) { c.Market.TickIntervalMS = 0 }); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Volatility out of range", func(t *testing.T) {
		if err := load(t, func(c *Config) { c.Market.Volatility = 1.5 }); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Empty symbol table", func(t *testing.T) {
		if err := load(t, func(c *Config) { c.Market.Symbols = nil }); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Symbol without assets", func(t *testing.T) {
		if err := load(t, func(c *Config) { c.Market.Symbols[0].QuoteAsset = "" }); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("Missing listen addr", func(t *testing.T) {
		if err := load(t, func(c *Config) { c.Server.ListenAddr = "" }); err == nil {
			t.Error("Expected validation error")
		}
	})
}
