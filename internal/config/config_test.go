package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "epley", cfg.Analytics.DefaultFormula)
	assert.Equal(t, 15*time.Minute, cfg.S3.ExportURLExpiry)
	assert.Equal(t, 30, cfg.Redis.ShareRatePerMin)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
database:
  driver: memory
jwt:
  secret: from-file
analytics:
  default_formula: brzycki
  lookup_cache_ttl: 1m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "brzycki", cfg.Analytics.DefaultFormula)
	assert.Equal(t, time.Minute, cfg.Analytics.LookupCacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := config.LoadConfig(dir)
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Config{
		Database:  config.DatabaseConfig{Driver: "postgres"},
		S3:        config.S3Config{Enabled: true},
		Log:       config.LogConfig{SentryEnabled: true},
		Redis:     config.RedisConfig{Address: "localhost:6379"},
		Analytics: config.AnalyticsConfig{LookupCacheMB: 0},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 7)
}
