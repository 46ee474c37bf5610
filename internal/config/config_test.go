package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.FormingTTL)
	assert.Equal(t, time.Minute, cfg.SweepEvery)
	assert.Equal(t, 100, cfg.GameLimit)
	assert.Equal(t, 100, cfg.BucketCapacity)
	assert.Equal(t, 20, cfg.InitialTokens)
	assert.Equal(t, 4, cfg.RefillRateMinute)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("FORMING_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.FormingTTL)
}
