package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"manestream/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		require.Equal(t, 8, cfg.FanoutConcurrency)
		require.Equal(t, 24*time.Hour, cfg.PlaceCacheTTL)
		require.Equal(t, "info", cfg.LogLevel)
		require.Equal(t, "manestream-places", cfg.PlacesBucket)
	})

	t.Run("unprefixed env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://db:5432/test")
		t.Setenv("FANOUT_CONCURRENCY", "3")

		cfg, err := config.Load()
		require.NoError(t, err)

		require.Equal(t, "postgres://db:5432/test", cfg.PostgresDSN())
		require.Equal(t, 3, cfg.FanoutConcurrency)
	})

	t.Run("prefixed env wins", func(t *testing.T) {
		t.Setenv("NATS_URL", "nats://plain:4222")
		t.Setenv("MANESTREAM_NATS_URL", "nats://prefixed:4222")

		cfg, err := config.Load()
		require.NoError(t, err)

		require.Equal(t, "nats://prefixed:4222", cfg.NATSURL)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("FANOUT_CONCURRENCY", "many")

		_, err := config.Load()
		require.Error(t, err)
	})
}
