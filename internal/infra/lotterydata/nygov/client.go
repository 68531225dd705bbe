// Package nygov reads Powerball results from the New York State open data API.
package nygov

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

	"github.com/yanqian/omniluck/internal/domain/lottery"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

const defaultURL = "https://data.ny.gov/resource/d6yy-54nr.json"

// Client implements lottery.DrawSource.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a dataset client.
func NewClient(datasetURL string) *Client {
	u := strings.TrimSpace(datasetURL)
	if u == "" {
		u = defaultURL
	}
	return &Client{
		url:        u,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RecentDraws returns up to limit drawings, newest first. Rows whose
// winning numbers do not parse are skipped.
func (c *Client) RecentDraws(ctx context.Context, limit int) ([]lottery.Drawing, error) {
	params := url.Values{}
	params.Set("$limit", strconv.Itoa(limit))
	params.Set("$order", "draw_date DESC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build draws request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLotteryData, "draws request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(apperrors.CodeLotteryData, "draws request error",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}

	var rows []row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLotteryData, "decode draws response", err)
	}
	draws := make([]lottery.Drawing, 0, len(rows))
	for _, r := range rows {
		white, pb, ok := lottery.ParseWinningNumbers(r.WinningNumbers)
		if !ok {
			continue
		}
		draws = append(draws, lottery.Drawing{
			Date:       datePart(r.DrawDate),
			WhiteBalls: white,
			Powerball:  pb,
			Multiplier: r.Multiplier,
		})
	}
	return draws, nil
}

type row struct {
	DrawDate       string `json:"draw_date"`
	WinningNumbers string `json:"winning_numbers"`
	Multiplier     string `json:"multiplier"`
}

func datePart(v string) string {
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}

var _ lottery.DrawSource = (*Client)(nil)
