package ephemeris

import (
	"errors"
	"math"

	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"

	"github.com/yanqian/omniluck/internal/domain/celestial"
)

var errPlacidusUndefined = errors.New("placidus cusps undefined at this latitude")

// HouseCusps computes the twelve cusps, ascendant and midheaven for an
// observer at lat/lon (degrees, east positive) at jd. Placidus falls back
// to Porphyry where semi-arcs do not exist. meeus has no house division, so
// only the local sidereal time and true obliquity come from it.
func (m *Meeus) HouseCusps(jd, lat, lon float64, system celestial.HouseSystem) (celestial.Houses, error) {
	if !inRange(jd) {
		return celestial.Houses{}, ErrOutOfRange
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return celestial.Houses{}, errors.New("coordinates out of range")
	}

	_, deps := nutation.Nutation(jd)
	eps := (nutation.MeanObliquity(jd) + deps).Deg()
	armc := celestial.Normalize(sidereal.Apparent(jd).Angle().Deg() + lon)
	mc := eclipticFromRA(armc, eps)
	asc := ascendant(armc, eps, lat)

	var houses celestial.Houses
	houses.Ascendant = asc
	houses.Midheaven = mc

	if system == celestial.Placidus || system == "" {
		if intermediate, err := placidus(armc, eps, lat); err == nil {
			houses.System = celestial.Placidus
			fillCusps(&houses, asc, mc, intermediate)
			return houses, nil
		}
	}
	houses.System = celestial.Porphyry
	fillCusps(&houses, asc, mc, porphyry(asc, mc))
	return houses, nil
}

// fillCusps lays out cusps from the angles and the four intermediate cusps
// (houses 11, 12, 2, 3); the remaining cusps are their opposites.
func fillCusps(h *celestial.Houses, asc, mc float64, mid [4]float64) {
	h.Cusps[0] = asc
	h.Cusps[1] = mid[2]
	h.Cusps[2] = mid[3]
	h.Cusps[3] = celestial.Normalize(mc + 180)
	h.Cusps[4] = celestial.Normalize(mid[0] + 180)
	h.Cusps[5] = celestial.Normalize(mid[1] + 180)
	h.Cusps[6] = celestial.Normalize(asc + 180)
	h.Cusps[7] = celestial.Normalize(mid[2] + 180)
	h.Cusps[8] = celestial.Normalize(mid[3] + 180)
	h.Cusps[9] = mc
	h.Cusps[10] = mid[0]
	h.Cusps[11] = mid[1]
}

func placidus(armc, eps, lat float64) ([4]float64, error) {
	var out [4]float64
	if math.Abs(lat) >= 90-eps {
		return out, errPlacidusUndefined
	}
	type spec struct {
		fraction float64
		above    bool
	}
	specs := [4]spec{{1.0 / 3, true}, {2.0 / 3, true}, {2.0 / 3, false}, {1.0 / 3, false}}
	for idx, sp := range specs {
		cusp, err := placidusCusp(armc, eps, lat, sp.fraction, sp.above)
		if err != nil {
			return out, err
		}
		out[idx] = cusp
	}
	return out, nil
}

// placidusCusp iterates on the cusp whose hour angle is the given fraction of
// its own diurnal (above) or nocturnal (below) semi-arc.
func placidusCusp(armc, eps, lat, fraction float64, above bool) (float64, error) {
	ra := func(ad float64) float64 {
		if above {
			return armc + fraction*(90+ad)
		}
		return armc + 180 - fraction*(90-ad)
	}
	lambda := eclipticFromRA(ra(0), eps)
	for i := 0; i < 50; i++ {
		decl := deg(math.Asin(math.Sin(rad(eps)) * math.Sin(rad(lambda))))
		x := math.Tan(rad(lat)) * math.Tan(rad(decl))
		if math.Abs(x) > 1 {
			return 0, errPlacidusUndefined
		}
		next := eclipticFromRA(ra(deg(math.Asin(x))), eps)
		if math.Abs(signedDelta(next, lambda)) < 1e-9 {
			return next, nil
		}
		lambda = next
	}
	return lambda, nil
}

// porphyry trisects the ecliptic arcs between the angles.
func porphyry(asc, mc float64) [4]float64 {
	upper := celestial.Normalize(asc - mc)
	lower := celestial.Normalize(mc + 180 - asc)
	return [4]float64{
		celestial.Normalize(mc + upper/3),
		celestial.Normalize(mc + 2*upper/3),
		celestial.Normalize(asc + lower/3),
		celestial.Normalize(asc + 2*lower/3),
	}
}

// eclipticFromRA converts a right ascension on the ecliptic to longitude.
func eclipticFromRA(ra, eps float64) float64 {
	r := rad(ra)
	return celestial.Normalize(deg(math.Atan2(math.Sin(r), math.Cos(r)*math.Cos(rad(eps)))))
}

func ascendant(armc, eps, lat float64) float64 {
	r, e := rad(armc), rad(eps)
	return celestial.Normalize(deg(math.Atan2(math.Cos(r), -(math.Sin(r)*math.Cos(e) + math.Tan(rad(lat))*math.Sin(e)))))
}
