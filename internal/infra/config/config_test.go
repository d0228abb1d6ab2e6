package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 24, cfg.Telemetry.WindowSize)
	require.Equal(t, 5, cfg.Telemetry.MinWindow)
	require.Equal(t, "models", cfg.Models.Dir)
	require.Equal(t, "seq_daily_v1", cfg.Models.Tag)
	require.Equal(t, 7, cfg.Forecast.Horizon)
	require.Equal(t, 3*time.Second, cfg.Actuator.Timeout)
	require.Equal(t, 0.85, cfg.Actuator.Confidence)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http:
  address: ":9090"
telemetry:
  windowSize: 48
  minWindow: 10
actuator:
  commandUrl: "http://10.0.0.9/command"
  timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 48, cfg.Telemetry.WindowSize)
	require.Equal(t, 10, cfg.Telemetry.MinWindow)
	require.Equal(t, "http://10.0.0.9/command", cfg.Actuator.CommandURL)
	require.Equal(t, 5*time.Second, cfg.Actuator.Timeout)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  address: \":9090\"\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDRESS", ":7070")
	t.Setenv("FORECAST_HORIZON", "3")
	t.Setenv("ACTUATOR_CONFIDENCE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.Equal(t, 3, cfg.Forecast.Horizon)
	require.Equal(t, 0.5, cfg.Actuator.Confidence)
}

func TestValidateRejectsBadWindowBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.Telemetry.MinWindow = 30
	cfg.Telemetry.WindowSize = 24
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEnabledValkeyWithoutAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.Valkey.Enabled = true
	cfg.Store.Valkey.Addr = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsObjectStoreWithoutEndpoint(t *testing.T) {
	cfg := defaultConfig()
	cfg.Models.ObjectStore.Enabled = true
	cfg.Models.ObjectStore.Bucket = "models"
	require.Error(t, cfg.Validate())
}
