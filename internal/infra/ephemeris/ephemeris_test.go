package ephemeris

import (
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/omniluck/internal/domain/celestial"
)

func TestSunAtJ2000(t *testing.T) {
	pos, err := New().PositionOf(base.J2000, celestial.Sun)
	require.NoError(t, err)
	require.InDelta(t, 280.38, pos.Longitude, 0.5)
	require.InDelta(t, 0, pos.Latitude, 0.01)
	require.InDelta(t, 1.02, pos.Speed, 0.05)
}

func TestMoonLongitude(t *testing.T) {
	// 1992-04-12 0h, worked example 47.a.
	pos, err := New().PositionOf(2448724.5, celestial.Moon)
	require.NoError(t, err)
	require.InDelta(t, 133.16, pos.Longitude, 0.5)
	require.InDelta(t, -3.23, pos.Latitude, 0.2)
	require.Greater(t, pos.Speed, 10.0)
}

func TestPositionsAreDeterministic(t *testing.T) {
	eph := New()
	jd := celestial.JulianDay(time.Date(1990, 1, 1, 12, 0, 0, 0, time.UTC))
	for _, body := range celestial.Bodies {
		first, err := eph.PositionOf(jd, body)
		require.NoError(t, err)
		second, err := eph.PositionOf(jd, body)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.GreaterOrEqual(t, first.Longitude, 0.0)
		require.Less(t, first.Longitude, 360.0)
	}
}

func TestMercuryRetrogradeStation(t *testing.T) {
	// Mercury was retrograde from 2023-08-23 to 2023-09-15.
	eph := New()
	jd := celestial.JulianDay(time.Date(2023, 9, 5, 0, 0, 0, 0, time.UTC))
	pos, err := eph.PositionOf(jd, celestial.Mercury)
	require.NoError(t, err)
	require.Less(t, pos.Speed, 0.0)

	jd = celestial.JulianDay(time.Date(2023, 10, 10, 0, 0, 0, 0, time.UTC))
	pos, err = eph.PositionOf(jd, celestial.Mercury)
	require.NoError(t, err)
	require.Greater(t, pos.Speed, 0.0)
}

func TestPlutoEntersAquariusEarly2024(t *testing.T) {
	jd := celestial.JulianDay(time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC))
	pos, err := New().PositionOf(jd, celestial.Pluto)
	require.NoError(t, err)
	require.InDelta(t, 300.0, pos.Longitude, 1.0)
	require.Greater(t, pos.Speed, 0.0)
}

func TestPositionOutOfRange(t *testing.T) {
	_, err := New().PositionOf(1000000, celestial.Sun)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = New().PositionOf(base.J2000, celestial.Body(99))
	require.Error(t, err)
}

func TestHouseCuspsPlacidusStructure(t *testing.T) {
	jd := celestial.JulianDay(time.Date(1990, 6, 15, 16, 30, 0, 0, time.UTC))
	houses, err := New().HouseCusps(jd, 40.71, -74.0, celestial.Placidus)
	require.NoError(t, err)
	require.Equal(t, celestial.Placidus, houses.System)
	require.Equal(t, houses.Ascendant, houses.Cusps[0])
	require.Equal(t, houses.Midheaven, houses.Cusps[9])
	require.InDelta(t, celestial.Normalize(houses.Ascendant+180), houses.Cusps[6], 1e-9)
	require.InDelta(t, celestial.Normalize(houses.Midheaven+180), houses.Cusps[3], 1e-9)

	for i := 0; i < 12; i++ {
		arc := celestial.Normalize(houses.Cusps[(i+1)%12] - houses.Cusps[i])
		require.Greater(t, arc, 0.0, "cusp %d", i+1)
		require.Less(t, arc, 180.0, "cusp %d", i+1)
	}
}

func TestHouseCuspsEquatorMatchesPorphyryAngles(t *testing.T) {
	jd := celestial.JulianDay(time.Date(2000, 3, 20, 0, 0, 0, 0, time.UTC))
	placidus, err := New().HouseCusps(jd, 0, 0, celestial.Placidus)
	require.NoError(t, err)
	porphyry, err := New().HouseCusps(jd, 0, 0, celestial.Porphyry)
	require.NoError(t, err)
	require.Equal(t, placidus.Ascendant, porphyry.Ascendant)
	require.Equal(t, placidus.Midheaven, porphyry.Midheaven)
}

func TestHouseCuspsPolarFallsBackToPorphyry(t *testing.T) {
	jd := celestial.JulianDay(time.Date(2000, 12, 21, 12, 0, 0, 0, time.UTC))
	houses, err := New().HouseCusps(jd, 78.2, 15.6, celestial.Placidus)
	require.NoError(t, err)
	require.Equal(t, celestial.Porphyry, houses.System)
	require.Equal(t, houses.Ascendant, houses.Cusps[0])
}

func TestHouseCuspsRejectsBadCoordinates(t *testing.T) {
	_, err := New().HouseCusps(base.J2000, 91, 0, celestial.Placidus)
	require.Error(t, err)
}

func TestNextLunations(t *testing.T) {
	eph := New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	newMoon, err := eph.NextNewMoon(start)
	require.NoError(t, err)
	require.WithinDuration(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), newMoon, 2*time.Hour)

	fullMoon, err := eph.NextFullMoon(start)
	require.NoError(t, err)
	require.WithinDuration(t, time.Date(2024, 3, 25, 7, 0, 0, 0, time.UTC), fullMoon, 2*time.Hour)

	// Just after a new moon the search moves on to the following lunation.
	following, err := eph.NextNewMoon(newMoon.Add(time.Hour))
	require.NoError(t, err)
	require.WithinDuration(t, time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC), following, 2*time.Hour)
}

func TestNextLunationOutOfRange(t *testing.T) {
	_, err := New().NextFullMoon(time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestLunarPhaseAgreesWithPositions(t *testing.T) {
	eph := New()
	fullMoon, err := eph.NextFullMoon(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	jd := celestial.JulianDay(fullMoon)
	moon, err := eph.PositionOf(jd, celestial.Moon)
	require.NoError(t, err)
	sun, err := eph.PositionOf(jd, celestial.Sun)
	require.NoError(t, err)
	require.InDelta(t, 180.0, celestial.Normalize(moon.Longitude-sun.Longitude), 0.5)
}
