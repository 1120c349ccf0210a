package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "https://gateway.nexawallet.io/chaindata", cfg.Service.BaseURL)
	assert.Equal(t, float64(10), cfg.Service.RatePerSecond)
	assert.Equal(t, 4, cfg.Service.MaxRetries)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	path := Path(home)

	cfg := Defaults()
	cfg.Service.BaseURL = "https://gateway.example.com"
	cfg.Service.Burst = 20
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example.com", loaded.Service.BaseURL)
	assert.Equal(t, 20, loaded.Service.Burst)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFallsBackToDefaultsForUnsetFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  burst: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Service.Burst)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvGatewayURL, " https://env.example.com ")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvRate, "2.5")
	t.Setenv(EnvFormat, "JSON")
	t.Setenv(EnvVerbose, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, "https://env.example.com", cfg.Service.BaseURL)
	assert.Equal(t, "env-key", cfg.Service.APIKey)
	assert.Equal(t, 2.5, cfg.Service.RatePerSecond)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvironmentIgnoresBadValues(t *testing.T) {
	t.Setenv(EnvRate, "not-a-number")

	cfg := Defaults()
	ApplyEnvironment(cfg)
	assert.Equal(t, float64(10), cfg.Service.RatePerSecond)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	log := NewLogger(LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, "debug", log.GetLevel().String())

	// Unknown level falls back to warn.
	log = NewLogger(LoggingConfig{Level: "chatty"})
	assert.Equal(t, "warning", log.GetLevel().String())
}
