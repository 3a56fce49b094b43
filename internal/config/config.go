// Package config loads the exchange-endpoint TOML file that drives
// ingestion task wiring at startup.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ExchangeConfig describes one exchange's REST and WebSocket endpoints.
type ExchangeConfig struct {
	Exchange     string `toml:"exchange"`
	HTTPApi      string `toml:"http_api"`
	ExchangeInfo string `toml:"exchange_info"`
	Snapshot     string `toml:"snapshot"`
	WssApi       string `toml:"wss_api"`
	DeltaStream  string `toml:"delta_stream"`
	TradesStream string `toml:"trades_stream"`
}

// Config is the top-level TOML document: one [[exchanges]] table per venue.
type Config struct {
	Exchanges []ExchangeConfig `toml:"exchanges"`
}

// Load reads and validates the exchange endpoint file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks that every exchange table carries the endpoints the
// ingestion task and HTTP adapter need.
func (c *Config) Validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("config must declare at least one exchange")
	}
	seen := make(map[string]bool, len(c.Exchanges))
	for i, ex := range c.Exchanges {
		if err := ex.Validate(); err != nil {
			return fmt.Errorf("exchanges[%d]: %w", i, err)
		}
		if seen[ex.Exchange] {
			return fmt.Errorf("exchanges[%d]: duplicate exchange tag %q", i, ex.Exchange)
		}
		seen[ex.Exchange] = true
	}
	return nil
}

func (e *ExchangeConfig) Validate() error {
	if e.Exchange == "" {
		return fmt.Errorf("exchange tag cannot be empty")
	}
	if e.HTTPApi == "" {
		return fmt.Errorf("http_api cannot be empty")
	}
	if e.ExchangeInfo == "" {
		return fmt.Errorf("exchange_info cannot be empty")
	}
	if e.Snapshot == "" {
		return fmt.Errorf("snapshot cannot be empty")
	}
	if e.WssApi == "" {
		return fmt.Errorf("wss_api cannot be empty")
	}
	if e.DeltaStream == "" {
		return fmt.Errorf("delta_stream cannot be empty")
	}
	if e.TradesStream == "" {
		return fmt.Errorf("trades_stream cannot be empty")
	}
	return nil
}

// Find returns the ExchangeConfig tagged with exchange, if present.
func (c *Config) Find(exchange string) (ExchangeConfig, bool) {
	for _, ex := range c.Exchanges {
		if ex.Exchange == exchange {
			return ex, true
		}
	}
	return ExchangeConfig{}, false
}
