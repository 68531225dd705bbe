package nygov

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/omniluck/internal/domain/lottery"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

func TestRecentDraws(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("$limit"))
		require.Equal(t, "draw_date DESC", r.URL.Query().Get("$order"))
		_, _ = w.Write([]byte(`[
			{"draw_date":"2024-03-13T00:00:00.000","winning_numbers":"03 18 36 41 54 07","multiplier":"2"},
			{"draw_date":"2024-03-11T00:00:00.000","winning_numbers":"garbage"},
			{"draw_date":"2024-03-09T00:00:00.000","winning_numbers":"01 02 03 04 05 06"}
		]`))
	}))
	defer srv.Close()

	draws, err := NewClient(srv.URL).RecentDraws(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, []lottery.Drawing{
		{Date: "2024-03-13", WhiteBalls: []int{3, 18, 36, 41, 54}, Powerball: 7, Multiplier: "2"},
		{Date: "2024-03-09", WhiteBalls: []int{1, 2, 3, 4, 5}, Powerball: 6},
	}, draws)
}

func TestRecentDrawsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RecentDraws(context.Background(), 10)
	require.True(t, apperrors.IsCode(err, apperrors.CodeLotteryData))
	require.Contains(t, err.Error(), "status=429")
}
