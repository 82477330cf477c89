package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AlpacaConfig struct {
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
	Endpoint  string `json:"endpoint"`
}

func (a AlpacaConfig) Enabled() bool {
	return a.ApiKey != "" && a.ApiSecret != ""
}

type Config struct {
	Port                 int          `json:"port"`
	HoldingsPath         string       `json:"holdingsPath"`
	SkipRows             int          `json:"skipRows"`
	ExchangeSuffix       string       `json:"exchangeSuffix"`
	CacheTTLSec          int          `json:"cacheTtlSec"`
	CacheMaxEntries      int          `json:"cacheMaxEntries"`
	MaxConcurrentFetches int          `json:"maxConcurrentFetches"`
	StrategyTimeoutMs    int          `json:"strategyTimeoutMs"`
	ValuationDeadlineMs  int          `json:"valuationDeadlineMs"`
	PriceStrategies      []string     `json:"priceStrategies"`
	DividendStrategies   []string     `json:"dividendStrategies"`
	UpstreamRps          float64      `json:"upstreamRps"`
	UpstreamBurst        int          `json:"upstreamBurst"`
	Alpaca               AlpacaConfig `json:"alpaca"`
}

func DefaultConfig() Config {
	return Config{
		Port:                 3009,
		HoldingsPath:         "holdings.csv",
		ExchangeSuffix:       ".T",
		CacheTTLSec:          300,
		CacheMaxEntries:      1024,
		MaxConcurrentFetches: 8,
		StrategyTimeoutMs:    4000,
		ValuationDeadlineMs:  10000,
		PriceStrategies:      []string{"yahoo-quote", "alpaca-trade", "yahoo-chart"},
		DividendStrategies:   []string{"yahoo-quote"},
		UpstreamRps:          5,
		UpstreamBurst:        5,
		Alpaca: AlpacaConfig{
			Endpoint: "https://data.alpaca.markets",
		},
	}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func (c Config) StrategyTimeout() time.Duration {
	return time.Duration(c.StrategyTimeoutMs) * time.Millisecond
}

func (c Config) ValuationDeadline() time.Duration {
	return time.Duration(c.ValuationDeadlineMs) * time.Millisecond
}

func (c Config) Validate() error {
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cacheMaxEntries must be positive, got %d", c.CacheMaxEntries)
	}
	if c.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("maxConcurrentFetches must be positive, got %d", c.MaxConcurrentFetches)
	}
	if c.StrategyTimeoutMs <= 0 {
		return fmt.Errorf("strategyTimeoutMs must be positive, got %d", c.StrategyTimeoutMs)
	}
	if c.ValuationDeadlineMs <= 0 {
		return fmt.Errorf("valuationDeadlineMs must be positive, got %d", c.ValuationDeadlineMs)
	}
	if c.CacheTTLSec < 0 {
		return fmt.Errorf("cacheTtlSec must not be negative, got %d", c.CacheTTLSec)
	}
	if len(c.PriceStrategies) == 0 {
		return fmt.Errorf("at least one price strategy is required")
	}
	return nil
}

func configPath() string {
	if p := os.Getenv("STOCKCHECK_CONFIG"); p != "" {
		return p
	}
	if strings.EqualFold(os.Getenv("STOCKCHECK_ENV"), "dev") {
		return "config-dev.json"
	}
	return "config.json"
}

// LoadConfig reads the JSON config file if there is one, then applies
// environment overrides. A missing file is not an error.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path := configPath()
	f, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err == nil {
		if err := json.Unmarshal(f, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	ints := map[string]*int{
		"PORT":                   &cfg.Port,
		"HOLDINGS_SKIP_ROWS":     &cfg.SkipRows,
		"CACHE_TTL_SEC":          &cfg.CacheTTLSec,
		"CACHE_MAX_ENTRIES":      &cfg.CacheMaxEntries,
		"MAX_CONCURRENT_FETCHES": &cfg.MaxConcurrentFetches,
		"STRATEGY_TIMEOUT_MS":    &cfg.StrategyTimeoutMs,
		"VALUATION_DEADLINE_MS":  &cfg.ValuationDeadlineMs,
		"UPSTREAM_BURST":         &cfg.UpstreamBurst,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		x, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("failed to parse %s=%q: %w", key, v, err)
		}
		*dst = x
	}

	if v := os.Getenv("UPSTREAM_RPS"); v != "" {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("failed to parse UPSTREAM_RPS=%q: %w", v, err)
		}
		cfg.UpstreamRps = x
	}

	strs := map[string]*string{
		"HOLDINGS_PATH":     &cfg.HoldingsPath,
		"ALPACA_API_KEY":    &cfg.Alpaca.ApiKey,
		"ALPACA_API_SECRET": &cfg.Alpaca.ApiSecret,
		"ALPACA_ENDPOINT":   &cfg.Alpaca.Endpoint,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	// an empty suffix is meaningful: it turns the rewrite off
	if v, ok := os.LookupEnv("EXCHANGE_SUFFIX"); ok {
		cfg.ExchangeSuffix = strings.TrimSpace(v)
	}

	if v := os.Getenv("PRICE_STRATEGIES"); v != "" {
		cfg.PriceStrategies = splitCSV(v)
	}
	if v := os.Getenv("DIVIDEND_STRATEGIES"); v != "" {
		cfg.DividendStrategies = splitCSV(v)
	}

	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
