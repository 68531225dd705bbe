package astrology

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/omniluck/internal/domain/celestial"
	"github.com/yanqian/omniluck/pkg/util"
)

var rulingSigns = map[celestial.Body][]string{
	celestial.Sun:     {"Leo"},
	celestial.Moon:    {"Cancer"},
	celestial.Mercury: {"Gemini", "Virgo"},
	celestial.Venus:   {"Taurus", "Libra"},
	celestial.Mars:    {"Aries", "Scorpio"},
	celestial.Jupiter: {"Sagittarius", "Pisces"},
	celestial.Saturn:  {"Capricorn", "Aquarius"},
}

// BirthInstant combines the local birth date and time in the birth timezone.
func BirthInstant(info BirthInfo) (time.Time, error) {
	date, err := util.ParseDate(info.DOB)
	if err != nil {
		return time.Time{}, fmt.Errorf("dob must be formatted as YYYY-MM-DD: %w", err)
	}
	clock := strings.TrimSpace(info.Time)
	if clock == "" {
		clock = "12:00"
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be formatted as HH:MM: %w", err)
	}
	tzName := strings.TrimSpace(info.Timezone)
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}
	if info.Lat < -90 || info.Lat > 90 {
		return time.Time{}, fmt.Errorf("latitude %.4f out of range", info.Lat)
	}
	if info.Lon < -180 || info.Lon > 180 {
		return time.Time{}, fmt.Errorf("longitude %.4f out of range", info.Lon)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hm.Hour(), hm.Minute(), 0, 0, loc).UTC(), nil
}

// HouseOf finds the house whose cusp interval contains longitude, wrapping at 0 degrees.
func HouseOf(longitude float64, cusps [12]float64) int {
	for i := 0; i < 12; i++ {
		cusp, next := cusps[i], cusps[(i+1)%12]
		if next < cusp {
			if longitude >= cusp || longitude < next {
				return i + 1
			}
		} else if cusp <= longitude && longitude < next {
			return i + 1
		}
	}
	return 1
}

func isAngular(house int) bool {
	return house == 1 || house == 4 || house == 7 || house == 10
}

// ChartStrength scores dignities and angular placements, clamped to [0, 100].
func ChartStrength(planets map[string]PlanetPosition) int {
	score := 50
	for _, body := range celestial.Bodies {
		signs, ok := rulingSigns[body]
		if !ok {
			continue
		}
		pos, ok := planets[body.String()]
		if !ok {
			continue
		}
		for _, sign := range signs {
			if pos.Sign == sign {
				score += 5
				break
			}
		}
	}
	if isAngular(planets[celestial.Venus.String()].House) {
		score += 3
	}
	if isAngular(planets[celestial.Jupiter.String()].House) {
		score += 3
	}
	if isAngular(planets[celestial.Mars.String()].House) {
		score -= 2
	}
	if isAngular(planets[celestial.Saturn.String()].House) {
		score -= 2
	}
	return clampInt(score, 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
