package infra

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tradedesk/internal/domain"
)

// SymbolConfig is one row of the seeded symbol table.
type SymbolConfig struct {
	Symbol     string          `yaml:"symbol"`
	Name       string          `yaml:"name"`
	BaseAsset  string          `yaml:"base_asset"`
	QuoteAsset string          `yaml:"quote_asset"`
	BasePrice  decimal.Decimal `yaml:"base_price"`
}

// Config holds all application settings. Loaded from YAML, then
// sensitive/deploy-specific values are overridden from env vars.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Exchange       string          `yaml:"exchange"` // Venue label, default "paper"
		TickIntervalMS int             `yaml:"tick_interval_ms"`
		Volatility     float64         `yaml:"volatility"` // Max fractional move per tick
		TakerFeeRate   decimal.Decimal `yaml:"taker_fee_rate"`
		WindowHours    int             `yaml:"window_hours"`
		Symbols        []SymbolConfig  `yaml:"symbols"`
	} `yaml:"market"`

	Account struct {
		QuoteAsset      string          `yaml:"quote_asset"`
		StartingBalance decimal.Decimal `yaml:"starting_balance"`
	} `yaml:"account"`

	Server struct {
		ListenAddr     string   `yaml:"listen_addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// TickInterval returns the simulation tick period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Market.TickIntervalMS) * time.Millisecond
}

// Window returns the rolling stats window.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Market.WindowHours) * time.Hour
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Market.TickIntervalMS <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Market.Volatility <= 0 || c.Market.Volatility >= 1 {
		return fmt.Errorf("volatility must be in (0, 1): %f", c.Market.Volatility)
	}
	if c.Market.TakerFeeRate.IsNegative() || c.Market.TakerFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("taker fee rate must be in [0, 1): %s", c.Market.TakerFeeRate)
	}
	if c.Market.WindowHours <= 0 {
		return fmt.Errorf("window hours must be positive")
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("at least one market symbol is required")
	}
	for _, s := range c.Market.Symbols {
		if s.Symbol == "" || s.BaseAsset == "" || s.QuoteAsset == "" {
			return fmt.Errorf("symbol entry %q must set symbol, base_asset and quote_asset", s.Symbol)
		}
		if !s.BasePrice.IsPositive() {
			return fmt.Errorf("symbol %s base price must be positive: %s", s.Symbol, s.BasePrice)
		}
	}
	if c.Account.QuoteAsset == "" {
		return fmt.Errorf("account quote asset is required")
	}
	if c.Account.StartingBalance.IsNegative() {
		return fmt.Errorf("starting balance must not be negative: %s", c.Account.StartingBalance)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}
	return nil
}

// overrideWithEnv overrides settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("TRADEDESK_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if level := os.Getenv("TRADEDESK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
