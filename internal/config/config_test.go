package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/receipts")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.DeviceIdleTimeout)
	assert.Equal(t, "receipt-exports", cfg.ExportBucket)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.GeneratedJWTSecret)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/receipts")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8081")
	t.Setenv("REDIS_ADDR", "redis://cache:6379")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://panel.example.com,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.ArchiveEnabled())
	assert.Equal(t, []string{"https://panel.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestJWTSecretFallback(t *testing.T) {
	t.Run("development generates one", func(t *testing.T) {
		cfg := &Config{Environment: "development", SweepInterval: time.Minute, DeviceIdleTimeout: time.Minute}
		require.NoError(t, cfg.finish())
		assert.Len(t, cfg.JWTSecret, 32)
		assert.True(t, cfg.GeneratedJWTSecret)
	})

	t.Run("production refuses", func(t *testing.T) {
		cfg := &Config{Environment: "Production", SweepInterval: time.Minute, DeviceIdleTimeout: time.Minute}
		assert.EqualError(t, cfg.finish(), "JWT_SECRET is required in production")
	})
}

func TestFinishRejectsNonPositiveIntervals(t *testing.T) {
	cfg := &Config{JWTSecret: "x", SweepInterval: 0, DeviceIdleTimeout: time.Minute}
	assert.Error(t, cfg.finish())

	cfg = &Config{JWTSecret: "x", SweepInterval: time.Minute, DeviceIdleTimeout: -time.Second}
	assert.Error(t, cfg.finish())
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}
