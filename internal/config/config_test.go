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
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "chat_events", cfg.AMQPExchange)
	assert.Equal(t, 256, cfg.EventBuffer)
	assert.Equal(t, time.Minute, cfg.PresenceSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.PresenceStaleAfter)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHAT_PORT", "9090")
	t.Setenv("CHAT_ENVIRONMENT", "production")
	t.Setenv("CHAT_PRESENCE_STALE_AFTER", "10m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 10*time.Minute, cfg.PresenceStaleAfter)
}
