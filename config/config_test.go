package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.App.DefaultPageSize)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("SERVER_ENVIRONMENT", "production")
	t.Setenv("APP_MAX_PAGE_SIZE", "25")

	v, err := LoadConfig()
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.App.MaxPageSize)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TICKETBOOKER_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("TICKETBOOKER_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TICKETBOOKER_TEST_MISSING", "fallback"))
}
