package suncalc

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// Helsinki coordinates for testing
const (
	testLatitude  = 60.1699
	testLongitude = 24.9384
)

// equinoxDate returns March 20, 2024 UTC; Helsinki has a regular day and night.
func equinoxDate() time.Time {
	return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
}

func TestGetSunEventTimesOrdering(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc(WithLocation(time.UTC))
	times, err := sc.GetSunEventTimes(testLatitude, testLongitude, equinoxDate())
	require.NoError(t, err)

	assert.True(t, times.CivilDawn.Before(times.Sunrise))
	assert.True(t, times.Sunrise.Before(times.Sunset))
	assert.True(t, times.Sunset.Before(times.CivilDusk))

	// Helsinki equinox sunrise is around 04:20 UTC
	assert.Equal(t, 4, times.Sunrise.Hour())
	assert.Equal(t, time.UTC, times.Sunrise.Location())
}

func TestCacheConsistency(t *testing.T) {
	t.Parallel()

	m, err := metrics.NewSunCalcMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	sc := NewSunCalc(WithLocation(time.UTC), WithMetrics(m))
	date := equinoxDate()

	times1, err := sc.GetSunEventTimes(testLatitude, testLongitude, date)
	require.NoError(t, err)

	// Same day and nearly the same place hits the cache
	times2, err := sc.GetSunEventTimes(testLatitude+0.001, testLongitude, date.Add(15*time.Hour))
	require.NoError(t, err)
	assert.True(t, times1.Sunrise.Equal(times2.Sunrise))
	assert.Equal(t, 1, sc.cache.ItemCount())

	_, found := sc.cache.Get(cacheKey(testLatitude, testLongitude, date))
	assert.True(t, found)

	assert.Equal(t, 1, testutil.CollectAndCount(m, "suncalc_cache_hits_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m, "suncalc_cache_misses_total"))
}

func TestDayPart(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc(WithLocation(time.UTC))
	times, err := sc.GetSunEventTimes(testLatitude, testLongitude, equinoxDate())
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want DayPart
	}{
		{"midnight", equinoxDate(), DayPartNight},
		{"between civil dawn and sunrise", times.CivilDawn.Add(time.Minute), DayPartDawn},
		{"noon", equinoxDate().Add(10 * time.Hour), DayPartDay},
		{"between sunset and civil dusk", times.Sunset.Add(time.Minute), DayPartDusk},
		{"late evening", times.CivilDusk.Add(time.Hour), DayPartNight},
	}

	for _, tt := range tests {
		got, err := sc.DayPart(testLatitude, testLongitude, tt.at)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestPolarDayHasNoEvents(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc(WithLocation(time.UTC))

	// Svalbard at midsummer: the sun never sets
	_, err := sc.DayPart(78.22, 15.65, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestCoordinatesOutOfRange(t *testing.T) {
	t.Parallel()

	sc := NewSunCalc()
	_, err := sc.GetSunEventTimes(91, 0, equinoxDate())
	require.Error(t, err)
	_, err = sc.GetSunEventTimes(0, -181, equinoxDate())
	require.Error(t, err)
}
