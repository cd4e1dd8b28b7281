package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	currencysync "go-currency-sync"
)

const (
	ProviderExchangeRate = "exchangerate"
	ProviderCoinbase     = "coinbase"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config everything the board needs at startup
type Config struct {
	Provider string        `envconfig:"CURRENCY_PROVIDER" default:"exchangerate"`
	APIKey   string        `envconfig:"EXCHANGERATE_API_KEY"`
	APIURL   string        `envconfig:"EXCHANGERATE_URL" default:"https://v6.exchangerate-api.com/v6"`
	Pivot    string        `envconfig:"CURRENCY_PIVOT" default:"USD"`
	Tracked  string        `envconfig:"CURRENCY_TRACKED" default:"IQD,MYR,QAR,KWD"`
	Refresh  time.Duration `envconfig:"CURRENCY_REFRESH" default:"1m"`
	HTTP     HTTPConfig
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Addr    string        `envconfig:"HTTP_ADDR" default:":8080"`
	Timeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s"`
}

// Load reads envFile if it exists, then the process environment
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// a missing file is fine, the environment alone may be enough
		_ = godotenv.Load(envFile)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderExchangeRate, ProviderCoinbase:
	default:
		return fmt.Errorf("provider %q: %w", c.Provider, ErrInvalidConfig)
	}
	if c.PivotCurrency() == "" {
		return fmt.Errorf("empty pivot: %w", ErrInvalidConfig)
	}
	if len(c.TrackedCurrencies()) == 0 {
		return fmt.Errorf("no tracked currencies: %w", ErrInvalidConfig)
	}
	if c.Refresh <= 0 {
		return fmt.Errorf("refresh %v: %w", c.Refresh, ErrInvalidConfig)
	}
	return nil
}

// PivotCurrency the normalized pivot
func (c *Config) PivotCurrency() currencysync.Currency {
	return currencysync.Currency(c.Pivot).Normalize()
}

// TrackedCurrencies the tracked codes in display order. The pivot is always shown first.
func (c *Config) TrackedCurrencies() []currencysync.Currency {
	pivot := c.PivotCurrency()
	codes := []currencysync.Currency{pivot}
	for _, code := range currencysync.ParseCurrencies(c.Tracked) {
		if code == pivot {
			continue
		}
		codes = append(codes, code)
	}
	if pivot == "" {
		return codes[1:]
	}
	return codes
}
