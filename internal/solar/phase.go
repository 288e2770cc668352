package solar

import "time"

// Phase is the position of now within the daily temperature cycle
type Phase int

const (
	PhaseNight Phase = iota
	PhaseRampUp
	PhaseDay
	PhaseRampDown
)

func (p Phase) String() string {
	switch p {
	case PhaseRampUp:
		return "ramp_up"
	case PhaseDay:
		return "day"
	case PhaseRampDown:
		return "ramp_down"
	default:
		return "night"
	}
}

// Evaluate returns the phase and target color temperature in Kelvin for now.
// Pure: identical inputs always produce identical results. During ramps the
// temperature moves linearly between the low and high setting; the position
// is clamped to [0,1] so a late wake-up lands exactly on the boundary value.
// Polar days and nights pin the temperature regardless of the clock.
func Evaluate(now time.Time, s Schedule, lowTemp, highTemp int) (Phase, int) {
	switch s.Condition {
	case ConditionPolarDay:
		return PhaseDay, highTemp
	case ConditionPolarNight:
		return PhaseNight, lowTemp
	}

	switch {
	case now.Before(s.Dawn):
		return PhaseNight, lowTemp
	case now.Before(s.Sunrise):
		return PhaseRampUp, interpolate(now, s.Dawn, s.Sunrise, lowTemp, highTemp)
	case now.Before(s.Sunset):
		return PhaseDay, highTemp
	case now.Before(s.Dusk):
		return PhaseRampDown, interpolate(now, s.Sunset, s.Dusk, highTemp, lowTemp)
	default:
		// now >= dusk means the schedule is stale; the caller recomputes
		// before evaluating, so this only covers direct misuse.
		return PhaseNight, lowTemp
	}
}

func interpolate(now, start, stop time.Time, from, to int) int {
	pos := clamp01(float64(now.Sub(start)) / float64(stop.Sub(start)))
	return from + int(float64(to-from)*pos)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
