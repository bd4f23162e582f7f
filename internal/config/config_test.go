package config

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearby-places/internal/pkg/errors"
)

func TestLoad_RequiresAccessToken(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, stderrors.Is(err, errors.ErrMissingAPIKey))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pk.test", cfg.Mapbox.AccessToken)
	assert.Equal(t, "https://api.mapbox.com", cfg.Mapbox.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Mapbox.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SearchCacheTTL)
	assert.Equal(t, 4, cfg.Cache.Precision)
	assert.Equal(t, 2, cfg.Search.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.Search.RetryInterval)
	assert.True(t, cfg.Search.AutoSearch)
	assert.Equal(t, 10*time.Second, cfg.Location.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, "*", cfg.Server.CORSAllowOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "pk.test")
	t.Setenv("MAPBOX_BASE_URL", "http://localhost:9999")
	t.Setenv("SEARCH_MAX_RETRIES", "0")
	t.Setenv("SEARCH_AUTO", "false")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.Mapbox.BaseURL)
	assert.Equal(t, 0, cfg.Search.MaxRetries)
	assert.False(t, cfg.Search.AutoSearch)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
}

func TestConfig_ValidateRanges(t *testing.T) {
	cfg := &Config{
		Mapbox: MapboxConfig{AccessToken: "pk.test", BaseURL: "http://x"},
		Search: SearchConfig{MaxRetries: -1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Search.MaxRetries = 2
	cfg.Cache.Precision = 12
	assert.Error(t, cfg.Validate())

	cfg.Cache.Precision = 4
	assert.NoError(t, cfg.Validate())
}
