package signals

import (
	"math"
	"time"

	"github.com/yanqian/omniluck/internal/domain/celestial"
	"github.com/yanqian/omniluck/pkg/util"
)

const (
	synodicMonth = 29.53
	phaseWindow  = 0.03
)

var referenceNewMoon = time.Date(2000, 1, 6, 0, 0, 0, 0, time.UTC)

// ComputeLunarPhase derives the phase from Sun and Moon longitudes at noon UTC
// on date. Next new and full moon dates come from the ephemeris when it is a
// celestial.LunarCalendar and from the mean synodic rate otherwise.
func ComputeLunarPhase(eph celestial.Ephemeris, date time.Time) (LunarPhase, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	jd := celestial.JulianDay(day.Add(12 * time.Hour))
	moon, err := eph.PositionOf(jd, celestial.Moon)
	if err != nil {
		return LunarPhase{}, err
	}
	sun, err := eph.PositionOf(jd, celestial.Sun)
	if err != nil {
		return LunarPhase{}, err
	}
	angle := celestial.Normalize(moon.Longitude - sun.Longitude)
	fraction := angle / 360

	nextFull, nextNew, err := nextLunations(eph, day, angle)
	if err != nil {
		return LunarPhase{}, err
	}

	return LunarPhase{
		PhaseName:       PhaseName(fraction),
		PhasePercentage: round(fraction, 3),
		Illumination:    round(50*(1-math.Cos(angle*math.Pi/180)), 1),
		NextFullMoon:    nextFull.Format(util.DateLayout),
		NextNewMoon:     nextNew.Format(util.DateLayout),
		InfluenceScore:  LunarInfluence(fraction),
	}, nil
}

// nextLunations returns the UTC dates of the next full and new moon on or
// after day.
func nextLunations(eph celestial.Ephemeris, day time.Time, angle float64) (full, newMoon time.Time, err error) {
	if cal, ok := eph.(celestial.LunarCalendar); ok {
		if full, err = cal.NextFullMoon(day); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if newMoon, err = cal.NextNewMoon(day); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return full.UTC(), newMoon.UTC(), nil
	}
	degPerDay := 360 / synodicMonth
	toNew := math.RoundToEven((360 - angle) / degPerDay)
	toFull := math.RoundToEven(celestial.Normalize(180-angle) / degPerDay)
	return day.AddDate(0, 0, int(toFull)), day.AddDate(0, 0, int(toNew)), nil
}

// SynodicLunarPhase approximates the phase from days since a known new moon.
func SynodicLunarPhase(date time.Time) LunarPhase {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := math.Floor(day.Sub(referenceNewMoon).Hours() / 24)
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	fraction := age / synodicMonth
	stamp := day.Format(util.DateLayout)
	return LunarPhase{
		PhaseName:       PhaseName(fraction),
		PhasePercentage: round(fraction, 3),
		Illumination:    round(fraction*100, 1),
		NextFullMoon:    stamp,
		NextNewMoon:     stamp,
		InfluenceScore:  LunarInfluence(fraction),
	}
}

// PhaseName buckets a phase fraction (0 new, 0.5 full) into eight names.
func PhaseName(fraction float64) string {
	switch {
	case fraction < 0.03:
		return "New Moon"
	case fraction < 0.22:
		return "Waxing Crescent"
	case fraction < 0.28:
		return "First Quarter"
	case fraction < 0.47:
		return "Waxing Gibbous"
	case fraction < 0.53:
		return "Full Moon"
	case fraction < 0.72:
		return "Waning Gibbous"
	case fraction < 0.78:
		return "Last Quarter"
	case fraction < 0.97:
		return "Waning Crescent"
	default:
		return "New Moon"
	}
}

// LunarInfluence peaks at the full moon (90-100), then new moon (80-90),
// then the quarters (60-70); everything else sits in 40-60.
func LunarInfluence(fraction float64) int {
	switch {
	case fraction >= 0.47 && fraction <= 0.53:
		return 90 + windowScore(math.Abs(fraction-0.5))
	case fraction < 0.03 || fraction > 0.97:
		return 80 + windowScore(math.Min(fraction, 1-fraction))
	case (fraction >= 0.22 && fraction <= 0.28) || (fraction >= 0.72 && fraction <= 0.78):
		nearest := math.Round(fraction/0.25) * 0.25
		return 60 + windowScore(math.Abs(fraction-nearest))
	default:
		return 40 + int(20*(1-math.Abs(fraction-0.5)*2))
	}
}

// windowScore maps the distance from the exact phase inside a 0.03 window to 0-10.
func windowScore(distance float64) int {
	return int(math.Max(0, (phaseWindow-distance)/phaseWindow*10))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
