package lottery

import "time"

const (
	whiteBallMax = 69
	powerballMax = 26
	ballsPerSet  = 5

	// TypePersonal marks the identity-only set.
	TypePersonal = "personal"
	// TypeDaily marks the per-day sets.
	TypeDaily = "daily"
)

// Set is one Powerball combination. Index is 1-based and only set for daily sets.
type Set struct {
	WhiteBalls []int  `json:"whiteBalls"`
	Powerball  int    `json:"powerball"`
	Type       string `json:"type"`
	Index      int    `json:"index,omitempty"`
	Balanced   bool   `json:"balanced"`
}

// DailyInput seeds the daily sets.
type DailyInput struct {
	Name       string
	DOB        string
	Date       string
	LuckScore  int
	AstroScore int
	NatalScore int
	Count      int
}

// Drawing is one historical Powerball result.
type Drawing struct {
	Date       string `json:"date"`
	WhiteBalls []int  `json:"whiteBalls"`
	Powerball  int    `json:"powerball"`
	Multiplier string `json:"multiplier,omitempty"`
}

// Stats are hot and cold numbers derived from recent drawings.
type Stats struct {
	HotNumbers         []int       `json:"hotNumbers"`
	ColdNumbers        []int       `json:"coldNumbers"`
	HotPowerballs      []int       `json:"hotPowerballs"`
	ColdPowerballs     []int       `json:"coldPowerballs"`
	WhiteFrequency     map[int]int `json:"whiteFrequency,omitempty"`
	PowerballFrequency map[int]int `json:"powerballFrequency,omitempty"`
	TotalDraws         int         `json:"totalDraws"`
	LastUpdated        time.Time   `json:"lastUpdated"`
	NextRefresh        time.Time   `json:"nextRefresh"`
	Cached             bool        `json:"cached"`
	Fallback           bool        `json:"fallback"`
}

// Snapshot is what a StatsStore persists between restarts.
type Snapshot struct {
	Stats     Stats     `json:"stats"`
	Drawings  []Drawing `json:"drawings"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DrawingsResult is the recent drawing history with cache metadata.
type DrawingsResult struct {
	Drawings    []Drawing `json:"drawings"`
	LastUpdated time.Time `json:"lastUpdated"`
	NextRefresh time.Time `json:"nextRefresh"`
	Cached      bool      `json:"cached"`
	Stale       bool      `json:"stale"`
}
