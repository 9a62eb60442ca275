package cmd_test

import (
	"log/slog"
	"testing"
	"time"

	"fulfillment/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "STORAGE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"JWT_SECRET", "JWT_TTL", "ADMIN_EMAIL", "ADMIN_PASSWORD", "KAFKA_BROKERS", "KAFKA_ORDER_CHANGED_TOPIC",
	"FANOUT_RELAY_ENABLED", "FANOUT_RELAY_CHANNEL", "FANOUT_BUFFER", "STATS_SCHEDULE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := cmd.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, cmd.StoragePostgres, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 64, cfg.FanoutBuffer)
	assert.Equal(t, "orders.changed", cfg.KafkaOrderChangedTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.FanoutRelayEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FANOUT_RELAY_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "pw")

	cfg, err := cmd.LoadConfig([]string{"--port", "9100"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.FanoutRelayEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Contains(t, cfg.DSN(), "dbname=fulfillment")
}

func TestLoadConfig_ReportsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("FANOUT_BUFFER", "many")

	_, err := cmd.LoadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
	assert.Contains(t, err.Error(), "FANOUT_BUFFER")
}

func TestConfig_Validate(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	_, err := cmd.LoadConfig([]string{"--storage", "memory"})
	require.NoError(t, err)

	t.Setenv("FANOUT_RELAY_ENABLED", "true")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("JWT_SECRET", "")

	_, err = cmd.LoadConfig([]string{"--storage", "memory", "--port", "0"})
	require.Error(t, err)
	for _, want := range []string{"HTTP_PORT", "FANOUT_RELAY_ENABLED", "ADMIN_EMAIL", "JWT_SECRET"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = cmd.LoadConfig([]string{"--storage", "mongo"})
	assert.ErrorContains(t, err, "STORAGE")
}
