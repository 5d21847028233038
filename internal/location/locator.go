package location

import (
	"context"
	"io"
	"time"

	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
	"golang.org/x/sync/singleflight"
)

// fixKey is the singleflight key, there is only one device position
const fixKey = "fix"

// Locator gates a Provider behind a Permission and bounds each fix by a
// timeout. Concurrent callers share one in-flight fix.
type Locator struct {
	provider   Provider
	permission Permission
	timeout    time.Duration
	group      singleflight.Group
	log        logger.Logger
}

// NewLocator creates a locator. A non-positive timeout uses conf.DefaultLocationTimeout.
func NewLocator(provider Provider, permission Permission, timeout time.Duration) *Locator {
	if timeout <= 0 {
		timeout = conf.DefaultLocationTimeout
	}
	return &Locator{
		provider:   provider,
		permission: permission,
		timeout:    timeout,
		log:        GetLogger(),
	}
}

// New builds the locator described by settings. Configured coordinates
// are served by a StaticProvider; without them every fix is unavailable.
// Prompts use in and out.
func New(settings *conf.Settings, in io.Reader, out io.Writer) *Locator {
	loc := settings.Location

	var provider Provider = unconfiguredProvider
	if lat, lng, ok := loc.Position(); ok {
		provider = NewStaticProvider(lat, lng)
	}

	return NewLocator(provider, NewPermission(loc.Permission, in, out), loc.Timeout)
}

// unconfiguredProvider has no position to report
var unconfiguredProvider = ProviderFunc(func(context.Context) (Position, error) {
	return Position{}, unavailableError(errors.NewStd("no position configured"), errors.CategoryConfiguration)
})

// RequestCurrentPosition implements Provider. It returns ErrPermissionDenied
// when access is refused and ErrUnavailable when the fix fails, times out
// or ctx is cancelled first.
func (l *Locator) RequestCurrentPosition(ctx context.Context) (Position, error) {
	granted, err := l.permission.Granted(ctx)
	if err != nil {
		if ctx.Err() != nil {
			l.log.Debug("Permission request cancelled", logger.Error(err))
			return Position{}, unavailableError(err, errors.CategoryCancellation)
		}
		return Position{}, unavailableError(err, errors.CategoryPermission)
	}
	if !granted {
		l.log.Debug("Location permission denied")
		return Position{}, deniedError("permission")
	}

	start := time.Now()
	ch := l.group.DoChan(fixKey, func() (any, error) {
		// Detached from the first caller so one cancellation does not fail
		// the others; the timeout still bounds the flight
		fixCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.provider.RequestCurrentPosition(fixCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Position{}, l.mapError(res.Err, time.Since(start))
		}
		pos, _ := res.Val.(Position)
		l.log.Debug("Position fix obtained",
			logger.Float64("latitude", pos.Latitude),
			logger.Float64("longitude", pos.Longitude),
			logger.Bool("shared", res.Shared),
			logger.Duration("duration", time.Since(start)))
		return pos, nil

	case <-ctx.Done():
		l.log.Debug("Position request cancelled", logger.Error(ctx.Err()))
		return Position{}, unavailableError(ctx.Err(), errors.CategoryCancellation)
	}
}

func (l *Locator) mapError(err error, elapsed time.Duration) error {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return deniedError("provider")
	case errors.Is(err, context.DeadlineExceeded):
		l.log.Warn("Position fix timed out",
			logger.Duration("timeout", l.timeout),
			logger.Duration("elapsed", elapsed))
		return unavailableError(err, errors.CategoryTimeout)
	case errors.Is(err, ErrUnavailable):
		return err
	default:
		l.log.Warn("Position fix failed", logger.Error(err))
		return unavailableError(err, errors.CategoryLocation)
	}
}

var _ Provider = (*Locator)(nil)
