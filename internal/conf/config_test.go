package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and resets viper, so Load works on a clean slate.
// Tests using it cannot run in parallel: viper and the environment are process wide.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	home := setupTestHome(t)

	settings, err := Load()
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(home, ".config", "birdwatcher", "config.yaml"))
	assert.True(t, settings.Output.SQLite.Enabled)
	assert.Equal(t, "birdwatcher.db", settings.Output.SQLite.Path)
	assert.False(t, settings.Output.MySQL.Enabled)
	assert.Equal(t, PermissionPrompt, settings.Location.Permission)
	assert.Equal(t, 10*time.Second, settings.Location.Timeout)
	_, _, ok := settings.Location.Position()
	assert.False(t, ok, "no position is configured by default")
	assert.Equal(t, "info", settings.Logging.DefaultLevel)
	require.NotNil(t, settings.Logging.Console)
	assert.Equal(t, "warn", settings.Logging.Console.Level)
	assert.Contains(t, settings.Logging.ModuleOutputs, "datastore")

	assert.Same(t, settings, GetSettings())
}

func TestLoadExplicitConfigFile(t *testing.T) {
	setupTestHome(t)

	path := filepath.Join(t.TempDir(), "field.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug: true
output:
  sqlite:
    path: /tmp/field.db
location:
  permission: GRANTED
  latitude: 60.1699
  longitude: 24.9384
  timeout: 3s
`), 0o600))
	viper.SetConfigFile(path)

	settings, err := Load()
	require.NoError(t, err)

	assert.True(t, settings.Debug)
	assert.Equal(t, "/tmp/field.db", settings.Output.SQLite.Path)
	assert.Equal(t, PermissionGranted, settings.Location.Permission, "permission is normalized")
	lat, lng, ok := settings.Location.Position()
	require.True(t, ok)
	assert.InDelta(t, 60.1699, lat, 1e-9)
	assert.InDelta(t, 24.9384, lng, 1e-9)
	assert.Equal(t, 3*time.Second, settings.Location.Timeout)
	assert.Equal(t, "debug", settings.Logging.DefaultLevel, "debug mode raises the file log level")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	setupTestHome(t)

	viper.SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setupTestHome(t)
	t.Setenv("BIRDWATCHER_DB_PATH", "/data/field.db")
	t.Setenv("BIRDWATCHER_LOCATION_PERMISSION", "denied")
	t.Setenv("BIRDWATCHER_LOCATION_TIMEOUT", "250ms")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/field.db", settings.Output.SQLite.Path)
	assert.Equal(t, PermissionDenied, settings.Location.Permission)
	assert.Equal(t, 250*time.Millisecond, settings.Location.Timeout)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	setupTestHome(t)
	t.Setenv("BIRDWATCHER_LATITUDE", "123")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BIRDWATCHER_LATITUDE")
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	setupTestHome(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  sqlite:
    enabled: false
  mysql:
    enabled: false
`), 0o600))
	viper.SetConfigFile(path)

	_, err := Load()
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
}

func TestEmbeddedDefaultConfigParses(t *testing.T) {
	t.Parallel()

	data, err := getDefaultConfig()
	require.NoError(t, err)
	assert.Contains(t, string(data), "birdwatcher.db")
}
