package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var london = Calculator{Latitude: 51.5, Longitude: -0.12}

func TestCompute_Ordering(t *testing.T) {
	now := time.Date(2024, time.June, 21, 10, 0, 0, 0, time.UTC)

	s, err := Compute(london, now, time.Hour)
	require.NoError(t, err)

	assert.False(t, s.Dawn.After(s.Sunrise), "dawn after sunrise")
	assert.True(t, s.Sunrise.Before(s.Sunset), "sunrise not before sunset")
	assert.False(t, s.Sunset.After(s.Dusk), "sunset after dusk")
	assert.True(t, s.Dusk.After(now), "dusk must be ahead of now")

	assert.Equal(t, time.Hour, s.Sunrise.Sub(s.Dawn))
	assert.Equal(t, time.Hour, s.Dusk.Sub(s.Sunset))
}

func TestCompute_WalksPastStaleDay(t *testing.T) {
	// Just before midnight, today's dusk is long gone; the schedule must
	// come from the next day.
	now := time.Date(2024, time.June, 21, 23, 50, 0, 0, time.UTC)

	s, err := Compute(london, now, time.Hour)
	require.NoError(t, err)

	assert.True(t, s.Dusk.After(now))
	assert.Equal(t, 22, s.Sunrise.Day(), "expected the schedule for June 22")
}

func TestCompute_ZeroDuration(t *testing.T) {
	now := time.Date(2024, time.June, 21, 10, 0, 0, 0, time.UTC)

	s, err := Compute(london, now, 0)
	require.NoError(t, err)

	assert.Equal(t, s.Sunrise, s.Dawn)
	assert.Equal(t, s.Sunset, s.Dusk)
}

func TestCompute_PolarDayAdvancesDaily(t *testing.T) {
	svalbard := Calculator{Latitude: 78.22, Longitude: 15.63}
	now := time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC)

	s, err := Compute(svalbard, now, time.Hour)
	require.NoError(t, err)

	require.Equal(t, ConditionPolarDay, s.Condition)
	assert.True(t, s.Dusk.After(now))
	// The synthesized dusk sits past the next midnight, so recomputation
	// happens once per day even with no sunset.
	assert.False(t, s.Dusk.Before(StartOfDay(now).Add(24*time.Hour)))
}

func TestSchedule_Stale(t *testing.T) {
	now := time.Date(2024, time.June, 21, 10, 0, 0, 0, time.UTC)
	s, err := Compute(london, now, time.Hour)
	require.NoError(t, err)

	assert.False(t, s.Stale(now))
	assert.False(t, s.Stale(s.Dusk.Add(-time.Second)))
	assert.True(t, s.Stale(s.Dusk))
	assert.True(t, s.Stale(s.Dusk.Add(time.Hour)))

	var zero Schedule
	assert.True(t, zero.Stale(now), "the zero schedule is always stale")
}
