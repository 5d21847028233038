// Package location captures the device position for new observations.
//
// A Locator checks a Permission once, then asks a Provider for a fix
// bounded by a timeout. Failures are reported as ErrPermissionDenied or
// ErrUnavailable and never block saving an observation.
package location

import (
	"context"
	"fmt"
	"time"

	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
)

var (
	// ErrPermissionDenied means the user refused location access
	ErrPermissionDenied = errors.NewStd("location permission denied")
	// ErrUnavailable means no fix could be obtained, including timeouts
	ErrUnavailable = errors.NewStd("location unavailable")
)

// Position is a single fix in decimal degrees
type Position struct {
	Latitude  float64
	Longitude float64
	At        time.Time
}

// String renders the position with five decimals (about one metre)
func (p Position) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Latitude, p.Longitude)
}

// Provider returns the current position. Implementations must return
// promptly once ctx is done.
type Provider interface {
	RequestCurrentPosition(ctx context.Context) (Position, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context) (Position, error)

// RequestCurrentPosition calls f
func (f ProviderFunc) RequestCurrentPosition(ctx context.Context) (Position, error) {
	return f(ctx)
}

// StaticProvider reports a fixed position, typically from configuration
type StaticProvider struct {
	Position Position
	now      func() time.Time
}

// NewStaticProvider returns a provider that always reports lat, lng
func NewStaticProvider(lat, lng float64) *StaticProvider {
	return &StaticProvider{
		Position: Position{Latitude: lat, Longitude: lng},
		now:      time.Now,
	}
}

// RequestCurrentPosition implements Provider
func (p *StaticProvider) RequestCurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	pos := p.Position
	if p.now != nil {
		pos.At = p.now()
	}
	return pos, nil
}

// GetLogger returns the location module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("location")
}

// unavailableError wraps cause so it matches ErrUnavailable
func unavailableError(cause error, category errors.ErrorCategory) error {
	return errors.New(fmt.Errorf("%w: %w", ErrUnavailable, cause)).
		Component("location").
		Category(category).
		Priority(errors.PriorityLow).
		Build()
}

// deniedError builds the error returned when permission is refused
func deniedError(source string) error {
	return errors.New(ErrPermissionDenied).
		Component("location").
		Category(errors.CategoryPermission).
		Priority(errors.PriorityLow).
		Context("source", source).
		Build()
}
