package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 90, cfg.CacheTTLSeconds)
	assert.Equal(t, 50, cfg.SearchCacheMaxPage)
	assert.Equal(t, "products", cfg.ElasticsearchIndex)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "HTTP_PORT", "0"},
		{"bad ttl", "CACHE_TTL_SECONDS", "0"},
		{"bad max page", "SEARCH_CACHE_MAX_PAGE", "0"},
		{"bad sample rate", "OTEL_SAMPLE_RATE", "2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgresConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "localhost", pg.Host)
	assert.Equal(t, int32(25), pg.MaxConns)
	assert.Equal(t, 60*time.Minute, pg.MaxConnLifetime)
	assert.Contains(t, pg.DSN(), "postgres://catalog:")
}
