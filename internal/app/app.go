// Package app wires configuration, logging, metrics, storage and location
// capture into the observation service used by the CLI commands.
package app

import (
	"context"
	"io"
	"time"

	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/location"
	"github.com/tphakala/birdwatcher/internal/logger"
	"github.com/tphakala/birdwatcher/internal/observability"
	"github.com/tphakala/birdwatcher/internal/observation"
	"github.com/tphakala/birdwatcher/internal/suncalc"
)

// App holds the components of one CLI session
type App struct {
	Settings     *conf.Settings
	Logger       *logger.CentralLogger
	Metrics      *observability.Metrics
	Store        datastore.Interface
	Locator      *location.Locator
	Observations *observation.Service
	SunCalc      *suncalc.SunCalc

	log logger.Logger
}

// New opens the field log described by settings and loads the current
// observations. Location prompts read from in and write to out.
// A storage failure is fatal and matches datastore.ErrStorageUnavailable;
// a failed first read is not, the session starts with an empty list.
func New(ctx context.Context, settings *conf.Settings, in io.Reader, out io.Writer) (*App, error) {
	if settings == nil {
		return nil, errors.Newf("settings are required").
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_logging").
			Build()
	}
	logger.SetGlobal(central)
	datastore.SetLogger(central.Module("datastore"))

	a := &App{
		Settings: settings,
		Logger:   central,
		log:      central.Module("app"),
	}

	if err := a.init(ctx, in, out); err != nil {
		a.log.WithContext(ctx).Error("Failed to open field log", logger.Error(err))
		_ = a.Close()
		return nil, err
	}

	a.log.WithContext(ctx).Debug("Field log opened",
		logger.String("name", settings.Main.Name),
		logger.Int("observations", a.Observations.Len()))
	return a, nil
}

func (a *App) init(ctx context.Context, in io.Reader, out io.Writer) error {
	m, err := observability.NewMetrics()
	if err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategorySystem).
			Context("operation", "init_metrics").
			Build()
	}
	a.Metrics = m

	store, err := datastore.New(a.Settings)
	if err != nil {
		return err
	}
	store.SetMetrics(m.Datastore)
	a.Store = store

	if err := store.Open(ctx); err != nil {
		return err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	a.Locator = location.New(a.Settings, in, out)
	a.Observations = observation.NewService(store, a.Locator,
		observation.WithMetrics(m.Observation),
		observation.WithLogger(a.Logger.Module("observation")))

	if err := a.loadObservations(ctx); err != nil {
		return err
	}

	zone := time.Local
	if a.Settings.Logging.Timezone != "" && a.Settings.Logging.Timezone != "Local" {
		if loc, err := time.LoadLocation(a.Settings.Logging.Timezone); err == nil {
			zone = loc
		}
	}
	a.SunCalc = suncalc.NewSunCalc(suncalc.WithMetrics(m.SunCalc), suncalc.WithLocation(zone))

	return nil
}

// Close releases the store and flushes the logs
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		a.Store = nil
	}
	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			errs = append(errs, err)
		}
		a.Logger = nil
	}
	return errors.Join(errs...)
}

// loadObservations fills the list for the first time. A read failure
// leaves the list empty and the session usable; writes refresh it again.
func (a *App) loadObservations(ctx context.Context) error {
	err := a.Observations.Refresh(ctx)
	if err == nil || !errors.Is(err, datastore.ErrReadFailed) {
		return err
	}

	a.log.WithContext(ctx).Warn("Could not load observations, starting with an empty list",
		logger.Error(err))
	return nil
}
