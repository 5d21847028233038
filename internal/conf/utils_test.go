package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/errors"
)

func TestGetBasePathCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FIELDLOG_ROOT", dir)

	got := GetBasePath("$FIELDLOG_ROOT/data/sqlite/")
	assert.Equal(t, filepath.Join(dir, "data", "sqlite"), got)
	assert.DirExists(t, got)
}

func TestGetDefaultConfigPathsPrefersExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	paths, err := GetDefaultConfigPaths()
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join(home, ".config", "birdwatcher"), paths[0])

	_, err = FindConfigFile()
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	configDir := filepath.Join(home, ".config", "birdwatcher")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("debug: false\n"), 0o600))

	paths, err = GetDefaultConfigPaths()
	require.NoError(t, err)
	assert.Equal(t, []string{configDir}, paths)

	found, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "config.yaml"), found)
}
