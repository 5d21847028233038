// internal/suncalc/suncalc.go

// Package suncalc calculates sun event times for observation coordinates
// and classifies an instant as night, dawn, day or dusk.
package suncalc

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sj14/astral/pkg/astral"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// defaultCacheExpiration keeps sun times for a day; a CLI run never needs longer
const defaultCacheExpiration = 24 * time.Hour

// SunEventTimes holds the calculated sun event times
type SunEventTimes struct {
	CivilDawn time.Time
	Sunrise   time.Time
	Sunset    time.Time
	CivilDusk time.Time
}

// DayPart is the light condition at an instant
type DayPart string

const (
	DayPartNight DayPart = "night"
	DayPartDawn  DayPart = "dawn"
	DayPartDay   DayPart = "day"
	DayPartDusk  DayPart = "dusk"
)

// SunCalc handles caching and calculation of sun event times. It is safe
// for concurrent use.
type SunCalc struct {
	cache    *cache.Cache
	location *time.Location
	metrics  *metrics.SunCalcMetrics
}

// Option configures a SunCalc
type Option func(*SunCalc)

// WithLocation sets the time zone results are reported in (default time.Local)
func WithLocation(loc *time.Location) Option {
	return func(sc *SunCalc) {
		if loc != nil {
			sc.location = loc
		}
	}
}

// WithMetrics records cache and calculation metrics
func WithMetrics(m *metrics.SunCalcMetrics) Option {
	return func(sc *SunCalc) {
		sc.metrics = m
	}
}

// NewSunCalc creates a new SunCalc instance
func NewSunCalc(opts ...Option) *SunCalc {
	sc := &SunCalc{
		// No janitor goroutine; expired entries are purged on insert
		cache:    cache.New(defaultCacheExpiration, 0),
		location: time.Local,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// cacheKey rounds coordinates to two decimals (about 1 km), which moves
// sun events by well under a minute
func cacheKey(latitude, longitude float64, date time.Time) string {
	return fmt.Sprintf("%.2f,%.2f,%s", latitude, longitude, date.Format(time.DateOnly))
}

// GetSunEventTimes returns the sun event times at the given coordinates on
// the calendar day of date (in the configured time zone).
func (sc *SunCalc) GetSunEventTimes(latitude, longitude float64, date time.Time) (SunEventTimes, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return SunEventTimes{}, errors.Newf("coordinates out of range: %g, %g", latitude, longitude).
			Component("suncalc").
			Category(errors.CategoryValidation).
			Build()
	}

	local := date.In(sc.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	key := cacheKey(latitude, longitude, day)

	if cached, found := sc.cache.Get(key); found {
		if sc.metrics != nil {
			sc.metrics.RecordSunCalcCacheHit(metrics.OpSunEvents)
		}
		return cached.(SunEventTimes), nil
	}

	if sc.metrics != nil {
		sc.metrics.RecordSunCalcCacheMiss(metrics.OpSunEvents)
	}

	start := time.Now()
	times, err := sc.calculateSunEventTimes(latitude, longitude, day)
	if sc.metrics != nil {
		sc.metrics.RecordSunCalcDuration(metrics.OpSunEvents, time.Since(start).Seconds())
	}
	if err != nil {
		if sc.metrics != nil {
			sc.metrics.RecordSunCalcOperation(metrics.OpSunEvents, metrics.StatusError)
		}
		return SunEventTimes{}, errors.New(err).
			Component("suncalc").
			Category(errors.CategoryGeneric).
			Priority(errors.PriorityLow).
			Context("date", day.Format(time.DateOnly)).
			Build()
	}

	sc.cache.DeleteExpired()
	sc.cache.Set(key, times, cache.DefaultExpiration)

	if sc.metrics != nil {
		sc.metrics.RecordSunCalcOperation(metrics.OpSunEvents, metrics.StatusSuccess)
		sc.metrics.UpdateCacheSize(sc.cache.ItemCount())
	}

	return times, nil
}

// calculateSunEventTimes calculates the sun event times for a given day.
// Polar day and polar night have no events and return an error.
func (sc *SunCalc) calculateSunEventTimes(latitude, longitude float64, day time.Time) (SunEventTimes, error) {
	observer := astral.Observer{Latitude: latitude, Longitude: longitude}

	civilDawn, err := astral.Dawn(observer, day, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(observer, day)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(observer, day)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(observer, day, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	return SunEventTimes{
		CivilDawn: civilDawn.In(sc.location),
		Sunrise:   sunrise.In(sc.location),
		Sunset:    sunset.In(sc.location),
		CivilDusk: civilDusk.In(sc.location),
	}, nil
}

// DayPart classifies at as dawn (civil dawn to sunrise), day, dusk
// (sunset to civil dusk) or night at the given coordinates.
func (sc *SunCalc) DayPart(latitude, longitude float64, at time.Time) (DayPart, error) {
	times, err := sc.GetSunEventTimes(latitude, longitude, at)
	if err != nil {
		return "", err
	}

	switch {
	case at.Before(times.CivilDawn):
		return DayPartNight, nil
	case at.Before(times.Sunrise):
		return DayPartDawn, nil
	case at.Before(times.Sunset):
		return DayPartDay, nil
	case at.Before(times.CivilDusk):
		return DayPartDusk, nil
	default:
		return DayPartNight, nil
	}
}
