package signals

import (
	"math"
	"strings"
)

// WeatherInfluence scores condition, temperature and humidity around a neutral 50.
func WeatherInfluence(condition string, tempC float64, humidity int) int {
	score := 50
	switch strings.ToLower(condition) {
	case "clear", "sun":
		score += 25
	case "clouds", "mist":
		score += 10
	case "rain", "drizzle":
		score -= 10
	case "thunderstorm", "snow":
		score -= 20
	}

	switch {
	case tempC >= 18 && tempC <= 25:
		score += 10
	case (tempC >= 10 && tempC < 18) || (tempC > 25 && tempC <= 30):
		score += 5
	case tempC < 5 || tempC > 35:
		score -= 10
	}

	switch {
	case humidity >= 40 && humidity <= 60:
		score += 5
	case humidity > 80:
		score -= 5
	}
	return max(0, min(100, score))
}

// ActivityLevel names the storm level for a planetary K-index.
func ActivityLevel(kp float64) string {
	switch {
	case kp < 4:
		return "quiet"
	case kp < 5:
		return "unsettled"
	case kp < 6:
		return "active"
	case kp < 7:
		return "minor storm"
	default:
		return "major storm"
	}
}

// GeomagneticInfluence is positive when the field is calm and negative during storms.
func GeomagneticInfluence(kp float64) int {
	switch {
	case kp < 2:
		return int(15 + (2-kp)*2.5)
	case kp < 4:
		return int(10 - (kp-2)*5)
	case kp < 6:
		return int(-(kp - 4) * 5)
	default:
		return int(-10 - (kp-6)*3.3)
	}
}

// CombineInfluence weights lunar 30%, weather 50% and geomagnetic 20%, truncated.
func CombineInfluence(lunar, weather, geomagnetic int) int {
	return int(float64(lunar)*0.3 + float64(weather)*0.5 + float64(geomagnetic)*0.2)
}

func toFahrenheit(c float64) float64 {
	return math.Round((c*9/5+32)*10) / 10
}
