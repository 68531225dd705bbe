package astrology

import "time"

// BirthInfo describes when and where a person was born.
type BirthInfo struct {
	DOB      string  `json:"dob"`
	Time     string  `json:"time"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// PlanetPosition is one body in a chart. House is 1 for transit positions.
type PlanetPosition struct {
	Name       string  `json:"name"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
	Sign       string  `json:"sign"`
	House      int     `json:"house"`
	Retrograde bool    `json:"retrograde"`
}

// NatalChart is the immutable birth snapshot.
type NatalChart struct {
	SunSign       string                    `json:"sunSign"`
	MoonSign      string                    `json:"moonSign"`
	Ascendant     string                    `json:"ascendant"`
	Planets       map[string]PlanetPosition `json:"planets"`
	Houses        map[int]float64           `json:"houses"`
	StrengthScore int                       `json:"strengthScore"`
	ComputedAt    time.Time                 `json:"computedAt"`
}

// AspectType names a canonical angular relationship.
type AspectType string

const (
	Conjunction AspectType = "Conjunction"
	Sextile     AspectType = "Sextile"
	Square      AspectType = "Square"
	Trine       AspectType = "Trine"
	Opposition  AspectType = "Opposition"
)

type aspectDef struct {
	Type  AspectType
	Angle float64
	Orb   float64
}

var aspectDefs = []aspectDef{
	{Conjunction, 0, 8},
	{Sextile, 60, 6},
	{Square, 90, 8},
	{Trine, 120, 8},
	{Opposition, 180, 8},
}

// Aspect relates one transiting body to one natal body.
type Aspect struct {
	Type          AspectType `json:"type"`
	TransitPlanet string     `json:"transitPlanet"`
	NatalPlanet   string     `json:"natalPlanet"`
	Angle         float64    `json:"angle"`
	Orb           float64    `json:"orb"`
	Strength      float64    `json:"strength"`
}

// Label renders the aspect the way it is shown to users, e.g. "Sun Trine Venus".
func (a Aspect) Label() string {
	return a.TransitPlanet + " " + string(a.Type) + " " + a.NatalPlanet
}

// DailyTransits are the positions and aspects for one day.
type DailyTransits struct {
	Date           string                    `json:"date"`
	Planets        map[string]PlanetPosition `json:"planets"`
	Aspects        []Aspect                  `json:"aspects"`
	InfluenceScore int                       `json:"influenceScore"`
}

// SunSign is the date-table zodiac sign.
type SunSign struct {
	Name   string `json:"name"`
	Symbol string `json:"emoji"`
}
