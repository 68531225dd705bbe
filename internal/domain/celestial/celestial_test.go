package celestial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignOfBoundaries(t *testing.T) {
	require.Equal(t, "Aries", SignOf(0))
	require.Equal(t, "Aries", SignOf(29.9))
	require.Equal(t, "Taurus", SignOf(30.0))
	require.Equal(t, "Pisces", SignOf(359.99))
	require.Equal(t, "Pisces", SignOf(-0.5))
	require.Equal(t, "Aries", SignOf(360))
}

func TestJulianDay(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	require.InDelta(t, 2451545.0, JulianDay(j2000), 1e-9)

	local := time.Date(2000, 1, 1, 20, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60))
	require.InDelta(t, 2451545.0, JulianDay(local), 1e-9)
}

func TestBodyString(t *testing.T) {
	require.Equal(t, "Sun", Sun.String())
	require.Equal(t, "Pluto", Pluto.String())
	require.Len(t, Bodies, 10)
	require.Equal(t, "Unknown", Body(42).String())
}

func TestRoundLongitudeStaysInRange(t *testing.T) {
	require.Equal(t, 0.0, RoundLongitude(359.996))
	require.Equal(t, 359.99, RoundLongitude(359.994))
	require.Equal(t, 30.0, RoundLongitude(29.996))
	require.Equal(t, 0.5, RoundLongitude(-359.5))
}
