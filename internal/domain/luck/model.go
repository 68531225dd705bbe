package luck

import (
	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/numerology"
	"github.com/yanqian/omniluck/internal/domain/signals"
)

// Request is the luck calculation payload. Optional numeric fields are
// pointers so that absent values can be told apart from zero.
type Request struct {
	UID            string   `json:"uid"`
	Name           string   `json:"name"`
	DOB            string   `json:"dob"`
	BirthPlaceName string   `json:"birthPlaceName,omitempty"`
	BirthLat       *float64 `json:"birthLat,omitempty"`
	BirthLon       *float64 `json:"birthLon,omitempty"`
	BirthTime      string   `json:"birthTime,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
	Intention      string   `json:"intention,omitempty"`

	PastLuckRating *int   `json:"pastLuckRating,omitempty"`
	SleepQuality   string `json:"sleepQuality,omitempty"`
	EnergyLevel    string `json:"energyLevel,omitempty"`

	PowerballCount int `json:"powerballCount,omitempty"`

	HistoryLottery string `json:"historyLottery,omitempty"`
	HistoryGames   string `json:"historyGames,omitempty"`
	HistorySports  string `json:"historySports,omitempty"`

	CurrentLat *float64 `json:"currentLat,omitempty"`
	CurrentLon *float64 `json:"currentLon,omitempty"`
	Date       string   `json:"date,omitempty"`
	Locale     string   `json:"locale,omitempty"`
}

// Components is the score breakdown. PersonalTrend is informational and is
// not part of Total.
type Components struct {
	AstrologyScore  int `json:"astrologyScore"`
	NatalPotential  int `json:"natalPotential"`
	NumerologyScore int `json:"numerologyScore"`
	CosmicWeather   int `json:"cosmicWeather"`
	IntuitionScore  int `json:"intuitionScore"`
	PersonalTrend   int `json:"personalTrend"`
	Total           int `json:"total"`
}

// AstrologySummary is the chart digest returned when birth coordinates are known.
type AstrologySummary struct {
	SunSign       string             `json:"sunSign"`
	MoonSign      string             `json:"moonSign"`
	Ascendant     string             `json:"ascendant"`
	StrengthScore int                `json:"strengthScore"`
	TransitScore  int                `json:"transitScore"`
	MajorAspects  []astrology.Aspect `json:"majorAspects"`
}

// Response is the full luck reading.
type Response struct {
	Date               string             `json:"date"`
	LuckScore          int                `json:"luckScore"`
	Components         Components         `json:"components"`
	Confidence         float64            `json:"confidence"`
	Caption            string             `json:"caption"`
	Summary            string             `json:"summary"`
	Explanation        string             `json:"explanation"`
	Archetype          string             `json:"archetype"`
	RecommendedActions []string           `json:"recommendedActions"`
	StrategicAdvice    string             `json:"strategicAdvice"`
	LuckyTimeSlots     []string           `json:"luckyTimeSlots"`
	NarrativeSource    string             `json:"narrativeSource"`
	ZodiacSign         string             `json:"zodiacSign"`
	PersonalPowerball  *lottery.Set       `json:"personalPowerball,omitempty"`
	DailyPowerballs    []lottery.Set      `json:"dailyPowerballs"`
	Numerology         numerology.Profile `json:"numerology"`
	Signals            signals.Cosmic     `json:"signals"`
	Astrology          *AstrologySummary  `json:"astrology,omitempty"`
}

// ForecastDay is one point of the trajectory.
type ForecastDay struct {
	Date          string   `json:"date"`
	LuckScore     int      `json:"luckScore"`
	TransitsScore int      `json:"transitsScore"`
	MajorAspects  []string `json:"majorAspects"`
}

// Trend directions of a forecast.
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendStable  = "Stable"
)

// Forecast is a seven day outlook.
type Forecast struct {
	Trajectory     []ForecastDay `json:"trajectory"`
	TrendDirection string        `json:"trendDirection"`
	BestDay        string        `json:"bestDay"`
}

// HistoryEntry is one stored daily score.
type HistoryEntry struct {
	UID        string     `json:"uid"`
	Date       string     `json:"date"`
	Score      int        `json:"score"`
	Components Components `json:"components"`
}

// History is a user's recent scores, newest first.
type History struct {
	UID           string         `json:"uid"`
	Days          int            `json:"days"`
	Entries       []HistoryEntry `json:"history"`
	PersonalTrend int            `json:"personalTrend"`
}
