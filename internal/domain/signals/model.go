package signals

import "time"

// LunarPhase describes the Moon on a calendar date.
type LunarPhase struct {
	PhaseName       string  `json:"phaseName"`
	PhasePercentage float64 `json:"phasePercentage"`
	Illumination    float64 `json:"illumination"`
	NextFullMoon    string  `json:"nextFullMoon"`
	NextNewMoon     string  `json:"nextNewMoon"`
	InfluenceScore  int     `json:"influenceScore"`
}

// WeatherReading is the raw observation returned by a WeatherSource.
type WeatherReading struct {
	Condition string
	TempC     float64
	Humidity  int
	Pressure  int
}

// Weather is the scored weather signal.
type Weather struct {
	Condition      string   `json:"condition"`
	TempC          float64  `json:"tempC"`
	TempF          float64  `json:"tempF"`
	Humidity       int      `json:"humidity"`
	Pressure       int      `json:"pressure"`
	UVIndex        *float64 `json:"uvIndex"`
	InfluenceScore int      `json:"influenceScore"`
	Source         string   `json:"source"`
}

// Geomagnetic is the scored planetary K-index signal. InfluenceScore may be negative.
type Geomagnetic struct {
	KpIndex        float64  `json:"kpIndex"`
	ActivityLevel  string   `json:"activityLevel"`
	SolarWindSpeed *float64 `json:"solarWindSpeed"`
	InfluenceScore int      `json:"influenceScore"`
	Source         string   `json:"source"`
}

// Cosmic bundles every signal with the weighted total.
type Cosmic struct {
	Lunar               LunarPhase  `json:"lunar"`
	Weather             Weather     `json:"weather"`
	Geomagnetic         Geomagnetic `json:"geomagnetic"`
	TotalInfluenceScore int         `json:"totalInfluenceScore"`
	Date                string      `json:"date"`
	FetchedAt           time.Time   `json:"fetchedAt"`
}

const sourceDefault = "default"

// DefaultWeather is used when no weather source is configured or it fails.
func DefaultWeather() Weather {
	return Weather{
		Condition:      "clear",
		TempC:          22.0,
		TempF:          71.6,
		Humidity:       50,
		Pressure:       1013,
		InfluenceScore: 75,
		Source:         sourceDefault,
	}
}

// DefaultGeomagnetic assumes quiet conditions.
func DefaultGeomagnetic() Geomagnetic {
	return Geomagnetic{
		KpIndex:        2.0,
		ActivityLevel:  "quiet",
		InfluenceScore: 10,
		Source:         sourceDefault,
	}
}
