package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.DashboardTTL)
	assert.Equal(t, time.Hour, cfg.Worker.OverdueInterval)
}

func TestLoad_PostgresNeedsDatabaseURL(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("DB_MAX_CONNS", "7")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DBMaxConns)
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE", "memory")
	t.Setenv("SHOP_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "SHOP_TIMEZONE")
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "seven")
	t.Setenv("X_DUR", "soon")
	assert.Equal(t, 3, getEnvInt("X_INT", 3))
	assert.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
}
