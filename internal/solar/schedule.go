package solar

import (
	"fmt"
	"time"
)

// maxDaysAhead bounds the walk-forward when looking for a day whose dusk is
// still in the future. Two iterations suffice in practice; the bound guards
// against drifting clocks.
const maxDaysAhead = 4

// Schedule holds the four phase boundaries derived from one day's solar
// trajectory plus the configured ramp duration
type Schedule struct {
	Dawn    time.Time
	Sunrise time.Time
	Sunset  time.Time
	Dusk    time.Time

	Condition Condition
}

// Stale reports whether now has advanced past this schedule's dusk, meaning
// the boundaries have to be recomputed for a later day
func (s Schedule) Stale(now time.Time) bool {
	return s.Dusk.IsZero() || !now.Before(s.Dusk)
}

// Compute derives the schedule for the earliest day whose dusk is still
// ahead of now. It starts at the UTC midnight of now and walks forward one
// day at a time, so a trajectory that is already stale for "today" never
// leaks into the result.
func Compute(calc Calculator, now time.Time, duration time.Duration) (Schedule, error) {
	day := StartOfDay(now)
	for i := 0; i < maxDaysAhead; i++ {
		trajectory := calc.Trajectory(day)
		s := Schedule{
			Dawn:      trajectory.Sunrise.Add(-duration),
			Sunrise:   trajectory.Sunrise,
			Sunset:    trajectory.Sunset,
			Dusk:      trajectory.Sunset.Add(duration),
			Condition: trajectory.Condition,
		}
		if s.Dusk.After(now) {
			return s, s.validate()
		}
		day = day.Add(24 * time.Hour)
	}
	return Schedule{}, fmt.Errorf("no usable solar trajectory within %d days of %s", maxDaysAhead, now.UTC())
}

// validate enforces dawn <= sunrise < sunset <= dusk
func (s Schedule) validate() error {
	if s.Dawn.After(s.Sunrise) || !s.Sunrise.Before(s.Sunset) || s.Sunset.After(s.Dusk) {
		return fmt.Errorf("inconsistent schedule: dawn %s, sunrise %s, sunset %s, dusk %s",
			s.Dawn.UTC(), s.Sunrise.UTC(), s.Sunset.UTC(), s.Dusk.UTC())
	}
	return nil
}
