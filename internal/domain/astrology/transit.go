package astrology

import (
	"math"
	"sort"

	"github.com/yanqian/omniluck/internal/domain/celestial"
)

// DetectAspects compares every transit body with every natal body in canonical
// body order and returns all aspects within orb.
func DetectAspects(transit, natal map[string]PlanetPosition) []Aspect {
	aspects := make([]Aspect, 0)
	for _, tb := range celestial.Bodies {
		tp, ok := transit[tb.String()]
		if !ok {
			continue
		}
		for _, nb := range celestial.Bodies {
			np, ok := natal[nb.String()]
			if !ok {
				continue
			}
			diff := math.Abs(tp.Longitude - np.Longitude)
			if diff > 180 {
				diff = 360 - diff
			}
			for _, def := range aspectDefs {
				deviation := math.Abs(diff - def.Angle)
				if deviation > def.Orb {
					continue
				}
				aspects = append(aspects, Aspect{
					Type:          def.Type,
					TransitPlanet: tb.String(),
					NatalPlanet:   nb.String(),
					Angle:         celestial.Round2(diff),
					Orb:           celestial.Round2(deviation),
					Strength:      celestial.Round2((def.Orb - deviation) / def.Orb * 100),
				})
			}
		}
	}
	return aspects
}

// InfluenceScore weighs aspects by nature and strength around a neutral 50.
func InfluenceScore(aspects []Aspect) int {
	score := 50.0
	for _, a := range aspects {
		switch a.Type {
		case Trine, Sextile:
			score += a.Strength * 0.2
		case Square, Opposition:
			score -= a.Strength * 0.15
		case Conjunction:
			score += a.Strength * 0.1
		}
	}
	return int(math.Max(0, math.Min(100, score)))
}

// TopAspects returns up to n aspects ordered by strength, stable for ties.
func TopAspects(aspects []Aspect, n int) []Aspect {
	sorted := make([]Aspect, len(aspects))
	copy(sorted, aspects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Strength > sorted[j].Strength
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
