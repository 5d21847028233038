package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/location"
	"github.com/tphakala/birdwatcher/internal/logger"
	"github.com/tphakala/birdwatcher/internal/observation"
)

// testSettings returns settings for a temporary SQLite field log with
// file logging under dir
func testSettings(dir string) *conf.Settings {
	settings := &conf.Settings{}
	settings.Main.Name = "test"
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(dir, "birdwatcher.db")
	settings.Location.Permission = conf.PermissionGranted
	settings.Location.Latitude = new(60.1699)
	settings.Location.Longitude = new(24.9384)
	settings.Location.Timeout = time.Second
	settings.Logging = logger.LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput:   &logger.FileOutput{Enabled: true, Path: filepath.Join(dir, "logs", "birdwatcher.log"), Level: "debug"},
		ModuleOutputs: map[string]logger.ModuleOutput{
			"datastore": {Enabled: true, FilePath: filepath.Join(dir, "logs", "datastore.log"), Level: "trace"},
		},
	}
	return settings
}

// Tests below replace the global logger, so they do not run in parallel

func TestAppAddsAndReloads(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)

	a, err := New(t.Context(), settings, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)

	receipt, err := a.Observations.AddObservation(t.Context(), "Robin", "", datastore.RarityCommon)
	require.NoError(t, err)
	require.NoError(t, receipt.Location)
	assert.True(t, receipt.Located())
	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "Close is idempotent")

	reopened, err := New(t.Context(), testSettings(dir), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, reopened.Close()) })

	view := reopened.Observations.GetView(observation.SortByRecency)
	require.Len(t, view, 1)
	assert.Equal(t, "Robin", view[0].Species)

	samples, err := reopened.Metrics.Snapshot()
	require.NoError(t, err)
	assert.NotEmpty(t, samples, "opening the store records datastore metrics")
}

func TestAppPromptDeniedByDefault(t *testing.T) {
	settings := testSettings(t.TempDir())
	settings.Location.Permission = conf.PermissionPrompt

	out := &bytes.Buffer{}
	a, err := New(t.Context(), settings, strings.NewReader("\n"), out)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	receipt, err := a.Observations.AddObservation(t.Context(), "Wren", "", datastore.RarityUnset)
	require.NoError(t, err)
	require.ErrorIs(t, receipt.Location, location.ErrPermissionDenied)
	assert.Contains(t, out.String(), "[y/N]")
}

func TestAppStorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	// A regular file where a directory is expected
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	settings.Output.SQLite.Path = filepath.Join(blocker, "sub", "birdwatcher.db")

	_, err := New(t.Context(), settings, strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, datastore.ErrStorageUnavailable)

	_, err = New(t.Context(), nil, nil, nil)
	require.Error(t, err)
}

// unreadableStore fails every read with err
type unreadableStore struct {
	err error
}

func (s unreadableStore) SelectAll(context.Context) ([]datastore.Observation, error) {
	return nil, s.err
}

func (s unreadableStore) Insert(context.Context, *datastore.Observation) error { return nil }

func (s unreadableStore) DeleteByID(context.Context, uint) error { return nil }

func TestLoadObservationsToleratesReadFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelDebug, time.UTC)

	readErr := errors.Join(datastore.ErrReadFailed, errors.NewStd("database is locked"))
	a := &App{
		log:          log,
		Observations: observation.NewService(unreadableStore{err: readErr}, nil, observation.WithLogger(log)),
	}

	require.NoError(t, a.loadObservations(t.Context()))
	assert.Zero(t, a.Observations.Len())
	assert.Contains(t, buf.String(), "starting with an empty list")

	other := errors.NewStd("unexpected")
	a.Observations = observation.NewService(unreadableStore{err: other}, nil, observation.WithLogger(log))
	require.ErrorIs(t, a.loadObservations(t.Context()), other)
}
