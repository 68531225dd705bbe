// Package noaa reads the planetary K-index published by the NOAA Space
// Weather Prediction Center.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/omniluck/internal/domain/signals"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

const defaultURL = "https://services.swpc.noaa.gov/json/planetary_k_index_1m.json"

// defaultKp is reported when the latest sample has no kp_index.
const defaultKp = 2.0

// Client implements signals.GeomagneticSource.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a feed client.
func NewClient(feedURL string, timeout time.Duration) *Client {
	u := strings.TrimSpace(feedURL)
	if u == "" {
		u = defaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: u, httpClient: &http.Client{Timeout: timeout}}
}

// FetchKp returns the most recent one-minute Kp sample.
func (c *Client) FetchKp(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build kp request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeGeomagneticError, "kp request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, apperrors.Wrap(apperrors.CodeGeomagneticError, "kp request error",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}

	var samples []sample
	if err := json.NewDecoder(resp.Body).Decode(&samples); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeGeomagneticError, "decode kp response", err)
	}
	if len(samples) == 0 {
		return 0, apperrors.Wrap(apperrors.CodeGeomagneticError, "kp feed is empty", nil)
	}
	latest := samples[len(samples)-1]
	if latest.KpIndex == nil {
		return defaultKp, nil
	}
	return *latest.KpIndex, nil
}

type sample struct {
	TimeTag string   `json:"time_tag"`
	KpIndex *float64 `json:"kp_index"`
}

var _ signals.GeomagneticSource = (*Client)(nil)
