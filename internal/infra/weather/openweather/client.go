// Package openweather fetches current conditions from OpenWeatherMap.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/omniluck/internal/domain/signals"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client implements signals.WeatherSource.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client. It returns nil without an API key so the
// caller can fall back to default weather.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchWeather returns metric conditions for the coordinate.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (signals.WeatherReading, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return signals.WeatherReading{}, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return signals.WeatherReading{}, apperrors.Wrap(apperrors.CodeWeatherError, "weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return signals.WeatherReading{}, apperrors.Wrap(apperrors.CodeWeatherError, "weather request error",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return signals.WeatherReading{}, apperrors.Wrap(apperrors.CodeWeatherError, "decode weather response", err)
	}
	if len(raw.Weather) == 0 {
		return signals.WeatherReading{}, apperrors.Wrap(apperrors.CodeWeatherError, "weather response has no conditions", nil)
	}
	return signals.WeatherReading{
		Condition: strings.ToLower(raw.Weather[0].Main),
		TempC:     raw.Main.Temp,
		Humidity:  raw.Main.Humidity,
		Pressure:  raw.Main.Pressure,
	}, nil
}

type apiResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
}

var _ signals.WeatherSource = (*Client)(nil)
