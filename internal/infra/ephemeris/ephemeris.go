// Package ephemeris implements celestial.Ephemeris on the soniakeys/meeus
// algorithms: the ELP-derived lunar series for the Moon, the solar series for
// the Sun, mean orbital elements solved through Kepler's equation for the
// planets, and the Chapter 37 series for Pluto. Longitudes are apparent,
// referred to the true equinox of date, and good to a few arcminutes between
// 1800 and 2200, well inside the smallest aspect orb.
package ephemeris

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/yanqian/omniluck/internal/domain/celestial"
)

// general precession in longitude, degrees per Julian century; only the
// J2000 Pluto series needs carrying to the equinox of date.
const precessionRate = 1.3969713

// speedStep is the half-width in days of the central difference used for
// daily motion.
const speedStep = 0.5

var (
	minJD = julian.CalendarGregorianToJD(1800, 1, 1)
	maxJD = julian.CalendarGregorianToJD(2200, 1, 1)
)

// ErrOutOfRange is returned for instants outside the supported span.
var ErrOutOfRange = errors.New("julian day outside supported range 1800-2200")

// planetIndex maps bodies onto the planetelements tables.
var planetIndex = map[celestial.Body]int{
	celestial.Mercury: planetelements.Mercury,
	celestial.Venus:   planetelements.Venus,
	celestial.Mars:    planetelements.Mars,
	celestial.Jupiter: planetelements.Jupiter,
	celestial.Saturn:  planetelements.Saturn,
	celestial.Uranus:  planetelements.Uranus,
	celestial.Neptune: planetelements.Neptune,
}

// Meeus implements celestial.Ephemeris and celestial.LunarCalendar without
// external data files. The UT/TT difference (about a minute) is ignored.
type Meeus struct{}

// New returns the ephemeris.
func New() *Meeus {
	return &Meeus{}
}

func inRange(jd float64) bool {
	return !math.IsNaN(jd) && jd >= minJD && jd <= maxJD
}

// PositionOf returns the geocentric ecliptic position of body at jd.
func (m *Meeus) PositionOf(jd float64, body celestial.Body) (celestial.Position, error) {
	if !inRange(jd) {
		return celestial.Position{}, ErrOutOfRange
	}
	lon, lat, err := geocentric(jd, body)
	if err != nil {
		return celestial.Position{}, err
	}
	before, _, err := geocentric(jd-speedStep, body)
	if err != nil {
		return celestial.Position{}, err
	}
	after, _, err := geocentric(jd+speedStep, body)
	if err != nil {
		return celestial.Position{}, err
	}
	return celestial.Position{
		Longitude: lon,
		Latitude:  lat,
		Speed:     signedDelta(after, before) / (2 * speedStep),
	}, nil
}

// geocentric returns apparent longitude and latitude in degrees.
func geocentric(jd float64, body celestial.Body) (lon, lat float64, err error) {
	t := base.J2000Century(jd)
	var elon, elat unit.Angle
	switch body {
	case celestial.Moon:
		elon, elat, _ = moonposition.Position(jd)
	case celestial.Sun:
		elon, _ = solar.True(t)
	case celestial.Pluto:
		l, b, r := pluto.Heliocentric(jd)
		l += unit.AngleFromDeg(precessionRate * t)
		elon, elat = fromEarth(rectangular(l, b, r), t)
	default:
		idx, ok := planetIndex[body]
		if !ok {
			return 0, 0, fmt.Errorf("unsupported body %d", body)
		}
		var el planetelements.Elements
		planetelements.Mean(idx, jd, &el)
		elon, elat = fromEarth(orbitPosition(&el), t)
	}
	dpsi, _ := nutation.Nutation(jd)
	return celestial.Normalize((elon + dpsi).Deg()), elat.Deg(), nil
}

type vector struct{ x, y, z float64 }

// orbitPosition solves Kepler's equation for the mean elements and returns
// heliocentric ecliptic coordinates in au.
func orbitPosition(el *planetelements.Elements) vector {
	anomaly := kepler.Kepler3(el.Ecc, el.Lon-el.Peri)
	nu := kepler.True(anomaly, el.Ecc)
	r := kepler.Radius(anomaly, el.Ecc, el.Axis)
	su, cu := (nu + el.Peri - el.Node).Sincos()
	sn, cn := el.Node.Sincos()
	si, ci := el.Inc.Sincos()
	return vector{
		x: r * (cn*cu - sn*su*ci),
		y: r * (sn*cu + cn*su*ci),
		z: r * su * si,
	}
}

func rectangular(l, b unit.Angle, r float64) vector {
	sl, cl := l.Sincos()
	sb, cb := b.Sincos()
	return vector{x: r * cb * cl, y: r * cb * sl, z: r * sb}
}

// earth places the Earth opposite the geometric Sun.
func earth(t float64) vector {
	s, _ := solar.True(t)
	return rectangular(s+math.Pi, 0, solar.Radius(t))
}

func fromEarth(p vector, t float64) (lon, lat unit.Angle) {
	e := earth(t)
	x, y, z := p.x-e.x, p.y-e.y, p.z-e.z
	return unit.Angle(math.Atan2(y, x)).Mod1(), unit.Angle(math.Atan2(z, math.Hypot(x, y)))
}

// signedDelta returns a-b folded into (-180, 180].
func signedDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

var (
	_ celestial.Ephemeris     = (*Meeus)(nil)
	_ celestial.LunarCalendar = (*Meeus)(nil)
)
