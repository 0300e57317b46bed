// Package config loads the pfy configuration from a YAML file and PFY_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/portfoy"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Workbook string `yaml:"workbook" env:"PFY_WORKBOOK" env-default:"portfoy"`
	History  string `yaml:"history" env:"PFY_HISTORY" env-default:"portfoy.db"`
	Display  string `yaml:"display" env:"PFY_DISPLAY" env-default:"TRY"`
	Workers  int    `yaml:"workers" env:"PFY_WORKERS" env-default:"8"`

	// Exclude names the profile left out of TOTAL.
	Exclude string `yaml:"exclude" env:"PFY_TOTAL_EXCLUDE"`

	FX      FX                `yaml:"fx"`
	Prices  Prices            `yaml:"prices"`
	Symbols map[string]string `yaml:"symbols" env:"PFY_SYMBOLS"`
	Log     Log               `yaml:"log"`
	Gemini  Gemini            `yaml:"gemini"`
	HTTP    HTTP              `yaml:"http"`
}

type FX struct {
	Pair     string  `yaml:"pair" env:"PFY_FX_PAIR" env-default:"USDTRY=X"`
	Fallback float64 `yaml:"fallback" env:"PFY_FX_FALLBACK" env-default:"34.20"`
}

type Prices struct {
	Timeout        time.Duration `yaml:"timeout" env:"PFY_FETCH_TIMEOUT" env-default:"10s"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"PFY_CACHE_TTL" env-default:"5m"`
	FailureTTL     time.Duration `yaml:"failure_ttl" env:"PFY_CACHE_FAILURE_TTL" env-default:"1m"`
	MarketLookback int           `yaml:"market_lookback" env:"PFY_MARKET_LOOKBACK" env-default:"7"`
	FundLookback   int           `yaml:"fund_lookback" env:"PFY_FUND_LOOKBACK" env-default:"14"`
	FundCeiling    float64       `yaml:"fund_ceiling" env:"PFY_FUND_CEILING" env-default:"100"`
	YahooURL       string        `yaml:"yahoo_url" env:"PFY_YAHOO_URL"`
	TefasURL       string        `yaml:"tefas_url" env:"PFY_TEFAS_URL"`
}

type Log struct {
	Level    string `yaml:"level" env:"PFY_LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"PFY_LOG_ENCODING" env-default:"console"`
}

type Gemini struct {
	Model string `yaml:"model" env:"PFY_GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type HTTP struct {
	Addr string `yaml:"addr" env:"PFY_HTTP_ADDR" env-default:":8080"`
}

// Load reads the configuration file at path, then applies environment
// overrides. A missing file is not an error: defaults and environment are
// used alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("cannot read config %q: %w", path, err)
			}
			return &cfg, cfg.validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	return &cfg, cfg.validate()
}

// Usage returns the description of the environment variables.
func Usage() string {
	var cfg Config
	help, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return help
}

func (c *Config) validate() error {
	if _, err := c.DisplayCurrency(); err != nil {
		return err
	}
	if _, err := c.FallbackRate(); err != nil {
		return err
	}
	if c.Prices.FundCeiling <= 0 {
		return fmt.Errorf("fund ceiling must be positive, got %v", c.Prices.FundCeiling)
	}
	return nil
}

// DisplayCurrency returns the configured display currency.
func (c *Config) DisplayCurrency() (portfoy.Currency, error) {
	return portfoy.ParseCurrency(c.Display)
}

// FallbackRate returns the rate used when the FX source fails.
func (c *Config) FallbackRate() (portfoy.FXRate, error) {
	rate, err := portfoy.NewFXRateFromFloat(c.FX.Fallback)
	if err != nil {
		return portfoy.FXRate{}, fmt.Errorf("invalid fx fallback: %w", err)
	}
	return rate, nil
}

// FundCeiling returns the fund unit price ceiling.
func (c *Config) FundCeiling() decimal.Decimal { return decimal.NewFromFloat(c.Prices.FundCeiling) }

// Union returns the options of the TOTAL profile.
func (c *Config) Union() portfoy.UnionOptions { return portfoy.UnionOptions{Exclude: c.Exclude} }

// SymbolMap returns the configured ticker overrides.
func (c *Config) SymbolMap() portfoy.SymbolMap {
	overrides := make(map[string]string, len(c.Symbols))
	for code, ticker := range c.Symbols {
		overrides[strings.ToUpper(strings.TrimSpace(code))] = ticker
	}
	return portfoy.SymbolMap{Overrides: overrides}
}
