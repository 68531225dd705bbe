package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/internal/domain/auth"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/internal/domain/signals"
	"github.com/yanqian/omniluck/internal/infra/config"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

const testSecret = "router-test-secret"

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/health", "", newRouterUnderTest(t, testDeps{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestRouter_EchoesRequestID(t *testing.T) {
	server := newRouterUnderTest(t, testDeps{})
	recorder := performRequest(http.MethodGet, "/health", "", server, header{"X-Request-ID", "abc-123"})
	require.Equal(t, "abc-123", recorder.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.CORSOrigins = []string{"https://app.example"}
	server := newRouterWithConfig(t, cfg, testDeps{})

	recorder := performRequest(http.MethodOptions, "/api/v1/luck/calculate", "", server, header{"Origin", "https://app.example"})
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "https://app.example", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = performRequest(http.MethodOptions, "/api/v1/luck/calculate", "", server, header{"Origin", "https://evil.example"})
	require.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSOpenWithoutAllowList(t *testing.T) {
	server := newRouterUnderTest(t, testDeps{})
	recorder := performRequest(http.MethodOptions, "/api/v1/luck/calculate", "", server, header{"Origin", "https://app.example"})
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ZodiacSign(t *testing.T) {
	server := newRouterUnderTest(t, testDeps{})

	recorder := performRequest(http.MethodGet, "/api/v1/astrology/zodiac-sign?dob=1990-01-01", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var sign astrology.SunSign
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &sign))
	require.Equal(t, "Capricorn", sign.Name)

	recorder = performRequest(http.MethodGet, "/api/v1/astrology/zodiac-sign?dob=01/01/1990", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_NatalChartErrors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
	}{
		"bad birth data": {
			err:    apperrors.Wrap(apperrors.CodeChartError, "chart computation failed", nil),
			status: http.StatusUnprocessableEntity,
		},
		"ephemeris failure": {
			err: apperrors.Wrap(apperrors.CodeChartError, "chart computation failed",
				apperrors.Wrap(apperrors.CodeEphemerisError, "sun lookup failed", nil)),
			status: http.StatusInternalServerError,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			astro := &stubAstrology{natalFn: func(context.Context, astrology.BirthInfo) (astrology.NatalChart, error) {
				return astrology.NatalChart{}, tc.err
			}}
			server := newRouterUnderTest(t, testDeps{astro: astro})
			recorder := performRequest(http.MethodPost, "/api/v1/astrology/natal-chart", `{"dob":"1990-01-01","time":"12:00","lat":40.7,"lon":-74,"timezone":"UTC"}`, server)
			require.Equal(t, tc.status, recorder.Code)
			require.Equal(t, apperrors.CodeChartError, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
		})
	}
}

func TestRouter_DailyTransitsUsesNoonOfDate(t *testing.T) {
	var gotAt time.Time
	astro := &stubAstrology{transitsFn: func(_ context.Context, at time.Time, chart astrology.NatalChart) (astrology.DailyTransits, error) {
		gotAt = at
		require.Contains(t, chart.Planets, "Sun")
		return astrology.DailyTransits{InfluenceScore: 64}, nil
	}}
	server := newRouterUnderTest(t, testDeps{astro: astro})

	recorder := performRequest(http.MethodPost, "/api/v1/astrology/daily-transits?date=2024-03-15", `{"planets":{"Sun":{"name":"Sun","longitude":280.5}}}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), gotAt)

	recorder = performRequest(http.MethodPost, "/api/v1/astrology/daily-transits", `{}`, server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_SignalsRequireCoordinates(t *testing.T) {
	server := newRouterUnderTest(t, testDeps{})

	recorder := performRequest(http.MethodGet, "/api/v1/signals/weather?lat=95&lon=0", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = performRequest(http.MethodGet, "/api/v1/signals/weather?lat=40.7&lon=-74", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var weather signals.Weather
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &weather))
	require.Equal(t, "default", weather.Source)
}

func TestRouter_AllSignalsParsesDate(t *testing.T) {
	sig := &stubSignals{}
	server := newRouterUnderTest(t, testDeps{signals: sig})

	recorder := performRequest(http.MethodGet, "/api/v1/signals/all?lat=1&lon=2&date=2024-03-15", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), sig.lastDate)

	recorder = performRequest(http.MethodGet, "/api/v1/signals/lunar-phase?date=15-03-2024", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_CalculateLuck(t *testing.T) {
	svc := &stubLuck{calculateFn: func(_ context.Context, req luck.Request) (luck.Response, error) {
		require.Equal(t, "Jane Doe", req.Name)
		require.Equal(t, "1990-01-01", req.DOB)
		return luck.Response{Date: "2024-03-15", LuckScore: 65, Confidence: 0.9}, nil
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"name":"Jane Doe","dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var got luck.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 65, got.LuckScore)
}

func TestRouter_CalculateLuckInvalidInput(t *testing.T) {
	svc := &stubLuck{calculateFn: func(context.Context, luck.Request) (luck.Response, error) {
		return luck.Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dob must be formatted as YYYY-MM-DD", nil)
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"yesterday"}`, server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", body["error"]["code"])
	require.Contains(t, body["error"]["message"], "YYYY-MM-DD")

	recorder = performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":123}`, server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_TokenSubjectBecomesUID(t *testing.T) {
	var gotUID string
	svc := &stubLuck{calculateFn: func(_ context.Context, req luck.Request) (luck.Response, error) {
		gotUID = req.UID
		return luck.Response{}, nil
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc, auth: newHMACAuth(t, false)})
	bearer := header{"Authorization", "Bearer " + signToken(t, "user-42")}

	recorder := performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"1990-01-01"}`, server, bearer)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "user-42", gotUID)

	recorder = performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"uid":"someone-else","dob":"1990-01-01"}`, server, bearer)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Empty(t, gotUID)
}

func TestRouter_AuthFailures(t *testing.T) {
	server := newRouterUnderTest(t, testDeps{auth: newHMACAuth(t, true)})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"1990-01-01"}`, server, header{"Authorization", "Token abc"})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performRequest(http.MethodPost, "/api/v1/luck/calculate", `{"dob":"1990-01-01"}`, server, header{"Authorization", "Bearer not-a-jwt"})
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Equal(t, apperrors.CodeInvalidToken, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(http.MethodGet, "/api/v1/lottery/stats", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_History(t *testing.T) {
	svc := &stubLuck{historyFn: func(_ context.Context, uid string, days int) (luck.History, error) {
		return luck.History{UID: uid, Days: days, Entries: []luck.HistoryEntry{{UID: uid, Date: "2024-03-14", Score: 60}}}, nil
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc, auth: newHMACAuth(t, false)})

	recorder := performRequest(http.MethodGet, "/api/v1/luck/history/user-42?days=7", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	var got luck.History
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "user-42", got.UID)
	require.Equal(t, 7, got.Days)
	require.Len(t, got.Entries, 1)

	recorder = performRequest(http.MethodGet, "/api/v1/luck/history/user-42?days=zero", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	bearer := header{"Authorization", "Bearer " + signToken(t, "user-7")}
	recorder = performRequest(http.MethodGet, "/api/v1/luck/history/user-42", "", server, bearer)
	require.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRouter_HistoryStorageFailure(t *testing.T) {
	svc := &stubLuck{historyFn: func(context.Context, string, int) (luck.History, error) {
		return luck.History{}, apperrors.Wrap(apperrors.CodeHistoryError, "failed to load luck history", io.ErrUnexpectedEOF)
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc})

	recorder := performRequest(http.MethodGet, "/api/v1/luck/history/user-42", "", server)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, apperrors.CodeHistoryError, decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_ForecastCalendar(t *testing.T) {
	svc := &stubLuck{calendarFn: func(context.Context, luck.Request) ([]byte, error) {
		return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
	}}
	server := newRouterUnderTest(t, testDeps{luck: svc})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/forecast.ics", `{"dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "text/calendar")
	require.Contains(t, recorder.Header().Get("Content-Disposition"), "omniluck-forecast.ics")
	require.Contains(t, recorder.Body.String(), "BEGIN:VCALENDAR")
}

func TestRouter_LotteryDrawings(t *testing.T) {
	lot := &stubLottery{}
	server := newRouterUnderTest(t, testDeps{lottery: lot})

	recorder := performRequest(http.MethodGet, "/api/v1/lottery/drawings?limit=5", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 5, lot.lastLimit)

	recorder = performRequest(http.MethodGet, "/api/v1/lottery/drawings?limit=500", "", server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	lot.drawingsErr = apperrors.Wrap(apperrors.CodeLotteryData, "failed to fetch drawings", io.EOF)
	recorder = performRequest(http.MethodGet, "/api/v1/lottery/drawings", "", server)
	require.Equal(t, http.StatusBadGateway, recorder.Code)
	require.Equal(t, 20, lot.lastLimit)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := newRouterWithConfig(t, cfg, testDeps{})

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/health", "", server).Code)
	recorder := performRequest(http.MethodGet, "/health", "", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesTransientPostFailures(t *testing.T) {
	calls := 0
	svc := &stubLuck{forecastFn: func(context.Context, luck.Request) (luck.Forecast, error) {
		calls++
		if calls == 1 {
			return luck.Forecast{}, io.ErrUnexpectedEOF
		}
		return luck.Forecast{TrendDirection: luck.TrendStable}, nil
	}}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2}
	server := newRouterWithConfig(t, cfg, testDeps{luck: svc})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/forecast", `{"dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 2, calls)
}

func TestRouter_RetryGivesUpWithLastFailure(t *testing.T) {
	calls := 0
	svc := &stubLuck{forecastFn: func(context.Context, luck.Request) (luck.Forecast, error) {
		calls++
		return luck.Forecast{}, io.ErrUnexpectedEOF
	}}
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3}
	server := newRouterWithConfig(t, cfg, testDeps{luck: svc})

	recorder := performRequest(http.MethodPost, "/api/v1/luck/forecast", `{"dob":"1990-01-01"}`, server)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Equal(t, "forecast_failed", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	require.Equal(t, 3, calls)
}

func TestRouter_RetryRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 2}
	server := newRouterWithConfig(t, cfg, testDeps{})

	body := `{"dob":"1990-01-01","name":"` + strings.Repeat("x", 70<<10) + `"}`
	recorder := performRequest(http.MethodPost, "/api/v1/luck/calculate", body, server)
	require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
	require.Equal(t, "request_too_large", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_UnexpectedErrorsAreMasked(t *testing.T) {
	require.Equal(t, codeInternal, asHTTPError(io.EOF).Code)
	require.Equal(t, http.StatusInternalServerError, asHTTPError(io.EOF).Status)
	wrapped := NewHTTPError(http.StatusForbidden, codeForbidden, "nope", io.EOF)
	require.Same(t, wrapped, asHTTPError(wrapped))
	require.ErrorIs(t, wrapped, io.EOF)
}

type header struct {
	key, value string
}

func performRequest(method, path, body string, server *http.Server, headers ...header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		req.Header.Set(h.key, h.value)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type testDeps struct {
	astro   astrology.Service
	signals signals.Service
	luck    luck.Service
	lottery lottery.StatsService
	auth    auth.Service
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, deps testDeps) *http.Server {
	return newRouterWithConfig(t, testConfig(), deps)
}

func newRouterWithConfig(t *testing.T, cfg *config.Config, deps testDeps) *http.Server {
	t.Helper()
	if deps.astro == nil {
		deps.astro = &stubAstrology{}
	}
	if deps.signals == nil {
		deps.signals = &stubSignals{}
	}
	if deps.luck == nil {
		deps.luck = &stubLuck{}
	}
	if deps.lottery == nil {
		deps.lottery = &stubLottery{}
	}
	handler := NewHandler(deps.astro, deps.signals, deps.luck, deps.lottery, deps.auth, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func newHMACAuth(t *testing.T, required bool) auth.Service {
	t.Helper()
	svc, err := auth.NewService(context.Background(), auth.Config{Mode: auth.ModeHMAC, Secret: testSecret, Required: required}, newTestLogger())
	require.NoError(t, err)
	return svc
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubAstrology struct {
	natalFn    func(ctx context.Context, info astrology.BirthInfo) (astrology.NatalChart, error)
	transitsFn func(ctx context.Context, at time.Time, chart astrology.NatalChart) (astrology.DailyTransits, error)
}

func (s *stubAstrology) NatalChart(ctx context.Context, info astrology.BirthInfo) (astrology.NatalChart, error) {
	if s.natalFn != nil {
		return s.natalFn(ctx, info)
	}
	return astrology.NatalChart{}, nil
}

func (s *stubAstrology) DailyTransits(ctx context.Context, at time.Time, chart astrology.NatalChart) (astrology.DailyTransits, error) {
	if s.transitsFn != nil {
		return s.transitsFn(ctx, at, chart)
	}
	return astrology.DailyTransits{}, nil
}

func (s *stubAstrology) ZodiacSign(dob string) (astrology.SunSign, error) {
	return astrology.SunSignForDOB(dob)
}

type stubSignals struct {
	lastDate time.Time
}

func (s *stubSignals) LunarPhase(date time.Time) signals.LunarPhase {
	s.lastDate = date
	return signals.LunarPhase{PhaseName: "Full Moon"}
}

func (s *stubSignals) Weather(context.Context, float64, float64) signals.Weather {
	return signals.DefaultWeather()
}

func (s *stubSignals) Geomagnetic(context.Context) signals.Geomagnetic {
	return signals.DefaultGeomagnetic()
}

func (s *stubSignals) All(_ context.Context, _, _ float64, date time.Time) signals.Cosmic {
	s.lastDate = date
	return signals.Cosmic{Date: date.Format("2006-01-02")}
}

func (s *stubSignals) Offline(date time.Time) signals.Cosmic {
	return signals.Cosmic{Date: date.Format("2006-01-02")}
}

type stubLuck struct {
	calculateFn func(ctx context.Context, req luck.Request) (luck.Response, error)
	forecastFn  func(ctx context.Context, req luck.Request) (luck.Forecast, error)
	calendarFn  func(ctx context.Context, req luck.Request) ([]byte, error)
	historyFn   func(ctx context.Context, uid string, days int) (luck.History, error)
}

func (s *stubLuck) Calculate(ctx context.Context, req luck.Request) (luck.Response, error) {
	if s.calculateFn != nil {
		return s.calculateFn(ctx, req)
	}
	return luck.Response{}, nil
}

func (s *stubLuck) Forecast(ctx context.Context, req luck.Request) (luck.Forecast, error) {
	if s.forecastFn != nil {
		return s.forecastFn(ctx, req)
	}
	return luck.Forecast{}, nil
}

func (s *stubLuck) ForecastCalendar(ctx context.Context, req luck.Request) ([]byte, error) {
	if s.calendarFn != nil {
		return s.calendarFn(ctx, req)
	}
	return nil, nil
}

func (s *stubLuck) History(ctx context.Context, uid string, days int) (luck.History, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, uid, days)
	}
	return luck.History{UID: uid}, nil
}

type stubLottery struct {
	lastLimit   int
	drawingsErr error
}

func (s *stubLottery) Stats(context.Context, bool) lottery.Stats {
	return lottery.FallbackStats()
}

func (s *stubLottery) Drawings(_ context.Context, limit int, _ bool) (lottery.DrawingsResult, error) {
	s.lastLimit = limit
	if s.drawingsErr != nil {
		return lottery.DrawingsResult{}, s.drawingsErr
	}
	return lottery.DrawingsResult{Drawings: []lottery.Drawing{}}, nil
}
