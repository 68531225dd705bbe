// Package celestial holds the ephemeris contract shared by the astrology and
// signals domains: bodies, positions, house cusps and the zodiac table.
package celestial

import (
	"math"
	"time"
)

// Body identifies one of the ten charted bodies.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

// Bodies lists every charted body in canonical order.
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

var bodyNames = [...]string{"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune", "Pluto"}

func (b Body) String() string {
	if b < Sun || b > Pluto {
		return "Unknown"
	}
	return bodyNames[b]
}

// Position is an ecliptic position of date. Speed is in degrees per day.
type Position struct {
	Longitude float64
	Latitude  float64
	Speed     float64
}

// HouseSystem selects the house division method.
type HouseSystem string

const (
	Placidus HouseSystem = "placidus"
	Porphyry HouseSystem = "porphyry"
)

// Houses carries the twelve cusp longitudes (index 0 is house 1) plus the angles.
type Houses struct {
	Cusps     [12]float64
	Ascendant float64
	Midheaven float64
	System    HouseSystem
}

// Ephemeris answers position and house queries for a Julian day (UT).
// Implementations must be deterministic for fixed inputs.
type Ephemeris interface {
	PositionOf(jd float64, body Body) (Position, error)
	HouseCusps(jd, lat, lon float64, system HouseSystem) (Houses, error)
}

// LunarCalendar is implemented by ephemerides that can find exact lunation
// instants. Callers type-assert for it and estimate from the mean synodic
// month when it is missing.
type LunarCalendar interface {
	NextNewMoon(after time.Time) (time.Time, error)
	NextFullMoon(after time.Time) (time.Time, error)
}

const unixEpochJD = 2440587.5

// JulianDay converts an instant to a Julian day number on the UT scale.
func JulianDay(t time.Time) float64 {
	return float64(t.UTC().UnixNano())/float64(24*time.Hour) + unixEpochJD
}

// Signs is the ordered tropical zodiac.
var Signs = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// SignOf maps an ecliptic longitude to its zodiac sign.
func SignOf(longitude float64) string {
	return Signs[int(math.Floor(Normalize(longitude)/30))%12]
}

// Normalize folds an angle into [0, 360).
func Normalize(deg float64) float64 {
	v := math.Mod(deg, 360)
	if v < 0 {
		v += 360
	}
	return v
}

// Round2 rounds to two decimals, the precision charts are reported with.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundLongitude rounds for output and keeps the result inside [0, 360), so
// 359.996 reports as 0 rather than 360. Derive signs and houses from the
// unrounded value.
func RoundLongitude(v float64) float64 {
	return Normalize(Round2(v))
}
