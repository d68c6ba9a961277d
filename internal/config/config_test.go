package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
host = "localhost"
port = 9000
log_level = "trace"
logs_path = ""
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "nutritiontrax"
redis_host = "localhost"
redis_port = "6379"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
login_rate_limit_allowed_per_min = 15
food_api_base_url = "https://api.nal.usda.gov/fdc/v1"
food_search_cache_size = 10485760

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/nutritiontrax/service.log"
log_to_stdout = false
sentry_enabled = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "nutritiontrax"
redis_host = "localhost"
redis_port = "6379"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"
login_rate_limit_allowed_per_min = 15
food_api_base_url = "https://api.nal.usda.gov/fdc/v1"
food_search_cache_size = 104857600
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigToml), 0o600))

	cfg, err := Load("development", configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.False(t, cfg.SentryEnabled)
	assert.Equal(t, "nutritiontrax", cfg.PostgresDBName)
	assert.Equal(t, 15, cfg.LoginRateLimitAllowedPerMin)

	cfg, err = Load("prod", configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.SentryEnabled)
	assert.Equal(t, "/var/log/nutritiontrax/service.log", cfg.LogsPath)

	_, err = Load("staging", configPath)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("development", filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
