package solar

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/sixdouglas/suncalc"
)

// Condition classifies a day's solar trajectory
type Condition int

const (
	// ConditionNormal means the sun rises and sets within the day
	ConditionNormal Condition = iota
	// ConditionPolarDay means the sun never sets
	ConditionPolarDay
	// ConditionPolarNight means the sun never rises
	ConditionPolarNight
)

func (c Condition) String() string {
	switch c {
	case ConditionPolarDay:
		return "polar_day"
	case ConditionPolarNight:
		return "polar_night"
	default:
		return "normal"
	}
}

// Trajectory holds the sunrise and sunset instants for one UTC calendar day
type Trajectory struct {
	Sunrise   time.Time
	Sunset    time.Time
	Condition Condition
}

// Calculator computes solar trajectories for a fixed location
type Calculator struct {
	Latitude  float64
	Longitude float64
}

// Trajectory returns sunrise and sunset for the UTC calendar day containing
// day. When the sun never crosses the horizon the day is classified as polar
// day or polar night by the sun altitude at apparent solar noon, and the
// bounds are pinned to the whole day (sunrise = midnight, sunset = next
// midnight) so downstream ordering invariants still hold. The result never
// contains zero or unordered times.
func (c Calculator) Trajectory(day time.Time) Trajectory {
	day = StartOfDay(day)
	rise, set := sunrise.SunriseSunset(c.Latitude, c.Longitude, day.Year(), day.Month(), day.Day())
	if !rise.IsZero() && !set.IsZero() && rise.Before(set) {
		return Trajectory{Sunrise: rise, Sunset: set, Condition: ConditionNormal}
	}

	condition := ConditionPolarNight
	if c.SunAltitude(solarNoon(day, c.Longitude)) > 0 {
		condition = ConditionPolarDay
	}
	return Trajectory{
		Sunrise:   day,
		Sunset:    day.Add(24 * time.Hour),
		Condition: condition,
	}
}

// SunAltitude returns the sun altitude above the horizon in degrees at t
func (c Calculator) SunAltitude(t time.Time) float64 {
	position := suncalc.GetPosition(t, c.Latitude, c.Longitude)
	return position.Altitude * (180.0 / math.Pi)
}

// StartOfDay truncates t to UTC midnight
func StartOfDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// solarNoon approximates the instant the sun crosses the local meridian:
// 12:00 UTC shifted by 4 minutes per degree of longitude.
func solarNoon(day time.Time, longitude float64) time.Time {
	return day.Add(12*time.Hour - time.Duration(longitude*4)*time.Minute)
}
