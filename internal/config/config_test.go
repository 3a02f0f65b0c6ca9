package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 168, cfg.SessionTTLHours)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "24")

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24, cfg.SessionTTLHours)
}

func TestRateLimitDefaultsAndClamping(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 3*time.Second, cfg.RefillInterval)

	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg = LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity, "capacity clamps to at least one token")
	assert.Equal(t, 5*time.Second, cfg.TTL, "ttl clamps to cover several refill intervals")
}

func TestRateLimitDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
}
