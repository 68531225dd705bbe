package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

func TestFetchWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "40.7", r.URL.Query().Get("lat"))
		require.Equal(t, "-74", r.URL.Query().Get("lon"))
		require.Equal(t, "secret", r.URL.Query().Get("appid"))
		require.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"weather":[{"main":"Clouds","description":"broken clouds"}],"main":{"temp":18.4,"humidity":71,"pressure":1009}}`))
	}))
	defer srv.Close()

	client := NewClient("secret", srv.URL, time.Second)
	reading, err := client.FetchWeather(context.Background(), 40.7, -74)
	require.NoError(t, err)
	require.Equal(t, "clouds", reading.Condition)
	require.Equal(t, 18.4, reading.TempC)
	require.Equal(t, 71, reading.Humidity)
	require.Equal(t, 1009, reading.Pressure)
}

func TestFetchWeatherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "1" {
			_, _ = w.Write([]byte(`{"weather":[],"main":{}}`))
			return
		}
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("bad", srv.URL, time.Second)
	_, err := client.FetchWeather(context.Background(), 0, 0)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherError))
	require.Contains(t, err.Error(), "status=401")

	_, err = client.FetchWeather(context.Background(), 1, 0)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherError))
}

func TestNewClientWithoutKey(t *testing.T) {
	require.Nil(t, NewClient(" ", "", 0))
}
