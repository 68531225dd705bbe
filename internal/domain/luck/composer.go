package luck

import (
	"strings"
	"time"

	"github.com/yanqian/omniluck/pkg/util"
)

// NeutralScore replaces any component whose collaborator failed.
const NeutralScore = 50

// Component weights in percent.
const (
	weightAstrology  = 40
	weightNatal      = 20
	weightNumerology = 15
	weightSignals    = 15
	weightIntuition  = 10
)

// Compose returns the weighted total of the five scored components, clamped
// to 0..100 and truncated. Weights are applied in integer hundredths so the
// truncation is exact.
func Compose(c Components) int {
	weighted := clamp(c.AstrologyScore, 0, 100)*weightAstrology +
		clamp(c.NatalPotential, 0, 100)*weightNatal +
		clamp(c.NumerologyScore, 0, 100)*weightNumerology +
		clamp(c.CosmicWeather, 0, 100)*weightSignals +
		clamp(c.IntuitionScore, 0, 100)*weightIntuition
	return clamp(weighted/100, 0, 100)
}

// Calibration is the user's daily self report.
type Calibration struct {
	PastLuckRating *int
	SleepQuality   string
	EnergyLevel    string
}

// Intuition scores the daily self report. With nothing reported it is neutral.
func Intuition(c Calibration) int {
	score := NeutralScore
	if c.PastLuckRating != nil {
		score += (*c.PastLuckRating - 5) * 4
	}
	switch normalizeTag(c.SleepQuality) {
	case "deep":
		score += 10
	case "restless":
		score -= 10
	case "vivid dreams", "vivid":
		score += 5
	}
	switch normalizeTag(c.EnergyLevel) {
	case "high":
		score += 10
	case "focused":
		score += 8
	case "low":
		score -= 10
	case "scattered":
		score -= 5
	}
	return clamp(score, 0, 100)
}

func normalizeTag(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }), " ")
}

const trendWindowDays = 7

// PersonalTrend compares the average stored score of the seven days before
// today with the seven days before that. Either window being empty yields 0.
func PersonalTrend(entries []HistoryEntry, today time.Time) int {
	today = truncateDay(today)
	var recentSum, recentN, prevSum, prevN int
	for _, e := range entries {
		day, err := util.ParseDate(e.Date)
		if err != nil {
			continue
		}
		ago := int(today.Sub(day).Hours() / 24)
		switch {
		case ago >= 1 && ago <= trendWindowDays:
			recentSum += e.Score
			recentN++
		case ago > trendWindowDays && ago <= 2*trendWindowDays:
			prevSum += e.Score
			prevN++
		}
	}
	if recentN == 0 || prevN == 0 {
		return 0
	}
	diff := float64(recentSum)/float64(recentN) - float64(prevSum)/float64(prevN)
	return clamp(int(diff), -100, 100)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
