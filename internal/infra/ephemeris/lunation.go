package ephemeris

import (
	"errors"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
)

const synodicMonth = 29.530588861 // days

var errNoLunation = errors.New("no lunation found after instant")

// NextNewMoon returns the first new moon at or after the instant.
func (m *Meeus) NextNewMoon(after time.Time) (time.Time, error) {
	return nextLunation(after, moonphase.New)
}

// NextFullMoon returns the first full moon at or after the instant.
func (m *Meeus) NextFullMoon(after time.Time) (time.Time, error) {
	return nextLunation(after, moonphase.Full)
}

// nextLunation walks forward in half-month steps. moonphase answers with the
// lunation nearest a decimal year, so a half-month step advances it by at
// most one lunation and the first hit at or after jd is the next one.
func nextLunation(after time.Time, nearest func(year float64) float64) (time.Time, error) {
	jd := julian.TimeToJD(after)
	if !inRange(jd) {
		return time.Time{}, ErrOutOfRange
	}
	year := base.JDEToJulianYear(jd)
	step := synodicMonth / 2 / base.JulianYear
	for i := 0; i < 4; i++ {
		if jde := nearest(year); jde >= jd {
			return julian.JDToTime(jde).UTC(), nil
		}
		year += step
	}
	return time.Time{}, errNoLunation
}
