// Package luck composes the daily luck score from astrology, numerology,
// environmental signals and the user's self report, and attaches the
// narrative and lottery numbers.
package luck

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/narrative"
	"github.com/yanqian/omniluck/internal/domain/numerology"
	"github.com/yanqian/omniluck/internal/domain/signals"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/util"
)

const (
	defaultName      = "User"
	confidence       = 0.9
	topAspectCount   = 3
	responseKeySpace = "luck:"
)

var tracer = otel.Tracer("github.com/yanqian/omniluck/internal/domain/luck")

// ResponseCache stores full responses per user, day and input fingerprint.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HistoryRepository persists one score per user and day.
type HistoryRepository interface {
	Record(ctx context.Context, entry HistoryEntry) error
	// Recent returns entries on or after since, oldest first.
	Recent(ctx context.Context, uid string, since time.Time) ([]HistoryEntry, error)
}

// JobQueue defers work off the request path.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

// Config tunes caching and history.
type Config struct {
	ResponseTTL    time.Duration
	HistoryDays    int
	MaxHistoryDays int
}

// Service computes luck readings.
type Service interface {
	Calculate(ctx context.Context, req Request) (Response, error)
	Forecast(ctx context.Context, req Request) (Forecast, error)
	ForecastCalendar(ctx context.Context, req Request) ([]byte, error)
	History(ctx context.Context, uid string, days int) (History, error)
}

type service struct {
	cfg       Config
	astro     astrology.Service
	numero    numerology.Service
	signals   signals.Service
	generator *lottery.Generator
	stats     lottery.StatsService
	narrative narrative.Service
	history   HistoryRepository
	jobs      JobQueue
	cache     ResponseCache
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the luck service. cache and jobs are optional; without a
// queue history is written inline.
func NewService(cfg Config, astro astrology.Service, numero numerology.Service, sig signals.Service, generator *lottery.Generator, stats lottery.StatsService, writer narrative.Service, history HistoryRepository, jobs JobQueue, cache ResponseCache, logger *slog.Logger) Service {
	if cfg.ResponseTTL <= 0 {
		cfg.ResponseTTL = time.Hour
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 30
	}
	if cfg.MaxHistoryDays <= 0 {
		cfg.MaxHistoryDays = 365
	}
	return &service{
		cfg:       cfg,
		astro:     astro,
		numero:    numero,
		signals:   sig,
		generator: generator,
		stats:     stats,
		narrative: writer,
		history:   history,
		jobs:      jobs,
		cache:     cache,
		logger:    logger.With("component", "luck.service"),
		now:       util.NowUTC,
	}
}

// chartResult is the astrology branch of a calculation.
type chartResult struct {
	summary *AstrologySummary
	astro   int
	natal   int
}

func (s *service) Calculate(ctx context.Context, req Request) (Response, error) {
	ctx, span := tracer.Start(ctx, "luck.Calculate")
	defer span.End()

	req, date, err := s.normalize(req)
	if err != nil {
		return Response{}, err
	}
	dateStr := date.Format(util.DateLayout)
	span.SetAttributes(attribute.String("luck.date", dateStr), attribute.Bool("luck.birth_chart", hasBirthCoords(req)))

	key := responseKey(req, dateStr)
	if cached, ok := s.cachedResponse(ctx, key); ok {
		span.SetAttributes(attribute.Bool("luck.cached", true))
		return cached, nil
	}

	var (
		cosmic  signals.Cosmic
		chart   = chartResult{astro: NeutralScore, natal: NeutralScore}
		profile numerology.Profile
		stats   lottery.Stats
		trend   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lat, lon := currentCoords(req)
		cosmic = s.signals.All(gctx, lat, lon, date)
		return nil
	})
	g.Go(func() error {
		res, err := s.chart(gctx, req, date)
		if err != nil {
			return err
		}
		chart = res
		return nil
	})
	g.Go(func() error {
		p, err := s.numero.Profile(req.DOB, req.Name, date)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		stats = s.stats.Stats(gctx, false)
		return nil
	})
	g.Go(func() error {
		trend = s.personalTrend(gctx, req.UID, date)
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Response{}, err
	}

	components := Components{
		AstrologyScore:  chart.astro,
		NatalPotential:  chart.natal,
		NumerologyScore: profile.HarmonyScore,
		CosmicWeather:   clamp(cosmic.TotalInfluenceScore, 0, 100),
		IntuitionScore: Intuition(Calibration{
			PastLuckRating: req.PastLuckRating,
			SleepQuality:   req.SleepQuality,
			EnergyLevel:    req.EnergyLevel,
		}),
		PersonalTrend: trend,
	}
	components.Total = Compose(components)

	zodiac := astrology.SunSignForDate(date)
	if sign, err := s.astro.ZodiacSign(req.DOB); err == nil {
		zodiac = sign
	}

	personal, err := s.generator.Personal(req.Name, req.DOB)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dob must be formatted as YYYY-MM-DD", err)
	}
	daily := s.generator.Daily(lottery.DailyInput{
		Name:       req.Name,
		DOB:        req.DOB,
		Date:       dateStr,
		LuckScore:  components.Total,
		AstroScore: components.AstrologyScore,
		NatalScore: components.NatalPotential,
		Count:      req.PowerballCount,
	}, stats)

	story := s.explain(ctx, req, dateStr, zodiac.Name, components.Total, profile, chart, cosmic)

	resp := Response{
		Date:               dateStr,
		LuckScore:          components.Total,
		Components:         components,
		Confidence:         confidence,
		Caption:            story.Caption,
		Summary:            story.Summary,
		Explanation:        story.Explanation,
		Archetype:          story.Archetype,
		RecommendedActions: story.Actions,
		StrategicAdvice:    story.Strategy,
		LuckyTimeSlots:     story.Schedule,
		NarrativeSource:    story.Source,
		ZodiacSign:         zodiac.Name,
		PersonalPowerball:  &personal,
		DailyPowerballs:    daily,
		Numerology:         profile,
		Signals:            cosmic,
		Astrology:          chart.summary,
	}
	span.SetAttributes(attribute.Int("luck.score", resp.LuckScore), attribute.String("luck.narrative_source", resp.NarrativeSource))

	s.recordHistory(ctx, HistoryEntry{UID: req.UID, Date: dateStr, Score: resp.LuckScore, Components: components})
	s.storeResponse(ctx, key, resp)
	return resp, nil
}

// normalize applies defaults and validates the request.
func (s *service) normalize(req Request) (Request, time.Time, error) {
	req.UID = strings.TrimSpace(req.UID)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = defaultName
	}
	req.DOB = strings.TrimSpace(req.DOB)
	if _, err := util.ParseDate(req.DOB); err != nil {
		return req, time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dob must be formatted as YYYY-MM-DD", err)
	}
	date, err := util.ResolveDate(req.Date, s.now(), time.UTC)
	if err != nil {
		return req, time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}
	if req.PastLuckRating != nil && (*req.PastLuckRating < 1 || *req.PastLuckRating > 10) {
		return req, time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "pastLuckRating must be between 1 and 10", nil)
	}
	if req.PowerballCount < 0 || req.PowerballCount > lottery.MaxDailyCount {
		return req, time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "powerballCount must be between 1 and 100", nil)
	}
	if req.PowerballCount == 0 {
		req.PowerballCount = lottery.DefaultDailyCount
	}
	if (req.BirthLat == nil) != (req.BirthLon == nil) {
		return req, time.Time{}, apperrors.Wrap(apperrors.CodeInvalidInput, "birthLat and birthLon must be given together", nil)
	}
	if err := validateCoords(req.CurrentLat, req.CurrentLon); err != nil {
		return req, time.Time{}, err
	}
	return req, date, nil
}

// chart computes the natal and transit scores. Without birth coordinates both
// are neutral. Bad birth data fails the request while an ephemeris failure
// degrades to neutral.
func (s *service) chart(ctx context.Context, req Request, date time.Time) (chartResult, error) {
	neutral := chartResult{astro: NeutralScore, natal: NeutralScore}
	if !hasBirthCoords(req) {
		return neutral, nil
	}
	ctx, span := tracer.Start(ctx, "luck.chart")
	defer span.End()

	natal, err := s.astro.NatalChart(ctx, birthInfo(req))
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeEphemerisError) {
			s.logger.Warn("natal chart unavailable, using neutral astrology", "error", err)
			span.RecordError(err)
			return neutral, nil
		}
		return neutral, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid birth data", err)
	}
	transits, err := s.astro.DailyTransits(ctx, transitInstant(date), natal)
	if err != nil {
		s.logger.Warn("transits unavailable, using neutral transit score", "error", err)
		span.RecordError(err)
		return chartResult{
			summary: summarize(natal, astrology.DailyTransits{InfluenceScore: NeutralScore}),
			astro:   NeutralScore,
			natal:   natal.StrengthScore,
		}, nil
	}
	return chartResult{
		summary: summarize(natal, transits),
		astro:   transits.InfluenceScore,
		natal:   natal.StrengthScore,
	}, nil
}

func summarize(natal astrology.NatalChart, transits astrology.DailyTransits) *AstrologySummary {
	return &AstrologySummary{
		SunSign:       natal.SunSign,
		MoonSign:      natal.MoonSign,
		Ascendant:     natal.Ascendant,
		StrengthScore: natal.StrengthScore,
		TransitScore:  transits.InfluenceScore,
		MajorAspects:  astrology.TopAspects(transits.Aspects, topAspectCount),
	}
}

func (s *service) explain(ctx context.Context, req Request, date, zodiac string, total int, profile numerology.Profile, chart chartResult, cosmic signals.Cosmic) narrative.Result {
	ctx, span := tracer.Start(ctx, "luck.narrative")
	defer span.End()

	in := narrative.Input{
		UID:          req.UID,
		Name:         req.Name,
		DOB:          req.DOB,
		Date:         date,
		Locale:       req.Locale,
		Intention:    req.Intention,
		ZodiacSign:   zodiac,
		LuckScore:    total,
		Numerology:   profile,
		TransitScore: chart.astro,
		LunarPhase:   cosmic.Lunar.PhaseName,
		Weather:      cosmic.Weather.Condition,
	}
	if chart.summary != nil {
		in.SunSign = chart.summary.SunSign
		in.MoonSign = chart.summary.MoonSign
		in.Ascendant = chart.summary.Ascendant
		if len(chart.summary.MajorAspects) > 0 {
			in.TopAspect = chart.summary.MajorAspects[0].Label()
		}
	}
	res := s.narrative.Explain(ctx, in)
	span.SetAttributes(attribute.String("narrative.source", res.Source))
	return res
}

func (s *service) personalTrend(ctx context.Context, uid string, date time.Time) int {
	if uid == "" || s.history == nil {
		return 0
	}
	entries, err := s.history.Recent(ctx, uid, date.AddDate(0, 0, -2*trendWindowDays))
	if err != nil {
		s.logger.Warn("history unavailable, personal trend is zero", "uid", uid, "error", err)
		return 0
	}
	return PersonalTrend(entries, date)
}

func (s *service) cachedResponse(ctx context.Context, key string) (Response, bool) {
	if key == "" || s.cache == nil {
		return Response{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("response cache read failed", "error", err)
		return Response{}, false
	}
	if !ok {
		return Response{}, false
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.logger.Warn("response cache entry corrupt", "error", err)
		return Response{}, false
	}
	return resp, true
}

func (s *service) storeResponse(ctx context.Context, key string, resp Response) {
	if key == "" || s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.ResponseTTL); err != nil {
		s.logger.Warn("response cache write failed", "error", err)
	}
}

// responseKey identifies a response by user, day and a fingerprint of every
// input, so a changed self report is never answered from cache.
func responseKey(req Request, date string) string {
	if req.UID == "" {
		return ""
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return responseKeySpace + req.UID + ":" + date + ":" + uuid.NewSHA1(uuid.NameSpaceOID, raw).String()
}

func hasBirthCoords(req Request) bool {
	return req.BirthLat != nil && req.BirthLon != nil
}

func birthInfo(req Request) astrology.BirthInfo {
	info := astrology.BirthInfo{DOB: req.DOB, Time: req.BirthTime, Timezone: req.Timezone}
	if hasBirthCoords(req) {
		info.Lat, info.Lon = *req.BirthLat, *req.BirthLon
	}
	return info
}

// currentCoords prefers the current location, then the birth place, then 0,0.
func currentCoords(req Request) (float64, float64) {
	if req.CurrentLat != nil && req.CurrentLon != nil {
		return *req.CurrentLat, *req.CurrentLon
	}
	if hasBirthCoords(req) {
		return *req.BirthLat, *req.BirthLon
	}
	return 0, 0
}

func validateCoords(lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be between -90 and 90", nil)
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "longitude must be between -180 and 180", nil)
	}
	return nil
}

// transitInstant is noon UTC of the target day.
func transitInstant(date time.Time) time.Time {
	return truncateDay(date).Add(12 * time.Hour)
}
