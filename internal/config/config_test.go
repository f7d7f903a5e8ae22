package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "storage", cfg.StoragePath)
	assert.Equal(t, DriverStorm, cfg.DatabaseDriver)
	assert.Equal(t, "clouddrive.db", cfg.DatabasePath)
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "@every 30m", cfg.CleanupSchedule)
	assert.Zero(t, cfg.StagingTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_PATH", "/srv/drive")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("STAGING_TTL", "24h")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/drive", cfg.StoragePath)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.StagingTTL)
}

func TestLoadDotEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("CACHE_SIZE=12\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CACHE_SIZE") })

	cfg, err := Load(dotenv)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.CacheSize)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoragePath: "storage", DatabaseDriver: "postgres"}
	assert.EqualError(t, cfg.Validate(), `unsupported database driver "postgres"`)

	cfg = &Config{DatabaseDriver: DriverStorm}
	assert.Error(t, cfg.Validate())

	cfg = &Config{StoragePath: "storage", DatabaseDriver: DriverStorm, CacheSize: -1}
	assert.Error(t, cfg.Validate())
}
