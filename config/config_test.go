package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"PORT", "APP_ENV", "LOG_LEVEL", "QUOTE_PROVIDER", "QUOTE_API_URL", "QUOTE_TIMEOUT",
		"API_KEY", "CORS_ORIGINS", "RABBIT_URL", "SNAPSHOT_QUEUE", "STRATEGY_CATALOG_CSV",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ProviderFMP, cfg.QuoteProvider)
	assert.Equal(t, "https://financialmodelingprep.com/api/v3", cfg.QuoteURL)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, DemoAPIKey, cfg.APIKey)
	assert.True(t, cfg.UsesDemoKey())
	assert.Equal(t, []string{"http://localhost:3000", "https://stock-portfolio-frontend.vercel.app"}, cfg.CORSOrigins)
	assert.Equal(t, "portfolio_snapshots", cfg.SnapshotQueue)
	assert.Empty(t, cfg.RabbitURL)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("API_KEY", "secret")
	t.Setenv("QUOTE_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("QUOTE_PROVIDER", "YAHOO")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.False(t, cfg.UsesDemoKey())
	assert.Equal(t, 3*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, ProviderYahoo, cfg.QuoteProvider)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"https://stock-portfolio-frontend.vercel.app",
		"https://a.example",
		"https://b.example",
	}, cfg.CORSOrigins)
}

func TestFromEnv_ProductionRequiresAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv("API_KEY", "secret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":           "http",
		"QUOTE_TIMEOUT":  "ten",
		"QUOTE_PROVIDER": "bloomberg",
		"APP_ENV":        "staging",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	t.Setenv("QUOTE_TIMEOUT", "-1s")
	_, err := FromEnv()
	assert.Error(t, err)
}
