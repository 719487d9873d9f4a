// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	quotesHttp "github.com/glbter/stock-portfolio/quotes/client/http"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ProviderFMP   = "fmp"
	ProviderYahoo = "yahoo"

	// DemoAPIKey is the quote provider's public, rate limited key. Only used outside production.
	DemoAPIKey = "demo"
)

var ErrMissingAPIKey = errors.New("API_KEY is required in production")

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"https://stock-portfolio-frontend.vercel.app",
}

type Config struct {
	Port     int
	Env      string
	LogLevel string

	QuoteProvider string
	QuoteURL      string
	QuoteTimeout  time.Duration
	APIKey        string

	CORSOrigins []string

	RabbitURL     string
	SnapshotQueue string

	StrategyCatalogCSV string
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// UsesDemoKey reports whether no API key was configured and the demo key is used instead.
func (c *Config) UsesDemoKey() bool {
	return c.QuoteProvider == ProviderFMP && c.APIKey == DemoAPIKey
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return FromEnv()
}

func FromEnv() (*Config, error) {
	timeout, err := getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	port, err := getEnvAsInt("PORT", 5001)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               port,
		Env:                strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		QuoteProvider:      strings.ToLower(getEnv("QUOTE_PROVIDER", ProviderFMP)),
		QuoteURL:           getEnv("QUOTE_API_URL", quotesHttp.DefaultURL),
		QuoteTimeout:       timeout,
		APIKey:             getEnv("API_KEY", ""),
		CORSOrigins:        corsOrigins(getEnv("CORS_ORIGINS", "")),
		RabbitURL:          getEnv("RABBIT_URL", ""),
		SnapshotQueue:      getEnv("SNAPSHOT_QUEUE", "portfolio_snapshots"),
		StrategyCatalogCSV: getEnv("STRATEGY_CATALOG_CSV", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.QuoteProvider {
	case ProviderFMP, ProviderYahoo:
	default:
		return fmt.Errorf("unsupported QUOTE_PROVIDER %q", c.QuoteProvider)
	}

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported APP_ENV %q", c.Env)
	}

	if c.QuoteProvider == ProviderFMP && c.APIKey == "" {
		if c.IsProduction() {
			return ErrMissingAPIKey
		}
		c.APIKey = DemoAPIKey
	}

	if c.QuoteTimeout <= 0 {
		return errors.New("QUOTE_TIMEOUT must be positive")
	}

	return nil
}

func corsOrigins(extra string) []string {
	origins := append([]string(nil), defaultCORSOrigins...)
	for _, o := range strings.Split(extra, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
