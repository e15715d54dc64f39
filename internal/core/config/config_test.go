package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_ENV",
	"LOG_LEVEL",
	"SERVER_PORT",
	"REDIS_URL",
	"REDIS_OP_TIMEOUT_SEC",
	"TRACKING_DEFAULT_LEAD_DAYS",
	"TRACKING_STRICT_TRANSITIONS",
	"LOOKUP_RATE_PER_SEC",
	"LOOKUP_BURST",
	"TRUSTED_PROXIES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range managedKeys {
			os.Unsetenv(k)
		}
	})
}

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 3, cfg.Redis.OpTimeout)
	assert.Equal(t, 5, cfg.Tracking.DefaultLeadDays)
	assert.False(t, cfg.Tracking.StrictTransitions)
	assert.Equal(t, 5*24*time.Hour, cfg.Tracking.LeadTime())
	assert.Equal(t, 2.0, cfg.Lookup.RatePerSec)
	assert.Equal(t, 5, cfg.Lookup.Burst)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	clearEnv(t)
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("REDIS_URL", "redis://cache:6379/2")
	os.Setenv("TRACKING_DEFAULT_LEAD_DAYS", "7")
	os.Setenv("TRACKING_STRICT_TRANSITIONS", "true")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URL)
	assert.Equal(t, 7, cfg.Tracking.DefaultLeadDays)
	assert.True(t, cfg.Tracking.StrictTransitions)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	clearEnv(t)
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
REDIS_URL=redis://staging:6379/1
TRACKING_DEFAULT_LEAD_DAYS=3
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "redis://staging:6379/1", cfg.Redis.URL)
	assert.Equal(t, 3, cfg.Tracking.DefaultLeadDays)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration: REDIS_URL")
}

func TestLoad_NegativeLeadDays(t *testing.T) {
	clearEnv(t)
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")
	os.Setenv("TRACKING_DEFAULT_LEAD_DAYS", "-1")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "TRACKING_DEFAULT_LEAD_DAYS")
}

func TestLoad_TrustedProxies(t *testing.T) {
	clearEnv(t)
	os.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(".")
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxyList())

	os.Setenv("TRUSTED_PROXIES", " 10.0.0.1, 172.16.0.0/12 ,,")
	cfg, err = Load(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxyList())
}
