// Package astrology builds natal charts from birth data and scores the day's
// transits against them.
package astrology

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/omniluck/internal/domain/celestial"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/util"
)

// Service exposes chart and transit calculations.
type Service interface {
	NatalChart(ctx context.Context, info BirthInfo) (NatalChart, error)
	DailyTransits(ctx context.Context, at time.Time, chart NatalChart) (DailyTransits, error)
	ZodiacSign(dob string) (SunSign, error)
}

type service struct {
	eph    celestial.Ephemeris
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the astrology service on top of an ephemeris.
func NewService(eph celestial.Ephemeris, logger *slog.Logger) Service {
	return &service{
		eph:    eph,
		logger: logger.With("component", "astrology.service"),
		now:    util.NowUTC,
	}
}

func (s *service) NatalChart(ctx context.Context, info BirthInfo) (NatalChart, error) {
	if err := ctx.Err(); err != nil {
		return NatalChart{}, err
	}
	instant, err := BirthInstant(info)
	if err != nil {
		return NatalChart{}, apperrors.Wrap(apperrors.CodeChartError, "chart computation failed", err)
	}
	jd := celestial.JulianDay(instant)

	houses, err := s.eph.HouseCusps(jd, info.Lat, info.Lon, celestial.Placidus)
	if err != nil {
		return NatalChart{}, chartEphemerisError("house cusps", err)
	}

	planets := make(map[string]PlanetPosition, len(celestial.Bodies))
	for _, body := range celestial.Bodies {
		pos, err := s.eph.PositionOf(jd, body)
		if err != nil {
			return NatalChart{}, chartEphemerisError(body.String(), err)
		}
		planets[body.String()] = PlanetPosition{
			Name:       body.String(),
			Longitude:  celestial.RoundLongitude(pos.Longitude),
			Latitude:   celestial.Round2(pos.Latitude),
			Sign:       celestial.SignOf(pos.Longitude),
			House:      HouseOf(celestial.Normalize(pos.Longitude), houses.Cusps),
			Retrograde: pos.Speed < 0,
		}
	}

	houseMap := make(map[int]float64, 12)
	for i, c := range houses.Cusps {
		houseMap[i+1] = celestial.RoundLongitude(c)
	}
	chart := NatalChart{
		SunSign:       planets[celestial.Sun.String()].Sign,
		MoonSign:      planets[celestial.Moon.String()].Sign,
		Ascendant:     celestial.SignOf(houses.Ascendant),
		Planets:       planets,
		Houses:        houseMap,
		StrengthScore: ChartStrength(planets),
		ComputedAt:    s.now(),
	}
	s.logger.Debug("natal chart computed", "sun", chart.SunSign, "moon", chart.MoonSign, "ascendant", chart.Ascendant, "houses", houses.System)
	return chart, nil
}

func (s *service) DailyTransits(ctx context.Context, at time.Time, chart NatalChart) (DailyTransits, error) {
	if err := ctx.Err(); err != nil {
		return DailyTransits{}, err
	}
	if len(chart.Planets) == 0 {
		return DailyTransits{}, apperrors.Wrap(apperrors.CodeInvalidInput, "natal chart has no planets", nil)
	}
	planets, err := s.transitPositions(at)
	if err != nil {
		return DailyTransits{}, err
	}
	aspects := DetectAspects(planets, chart.Planets)
	return DailyTransits{
		Date:           at.UTC().Format(util.DateLayout),
		Planets:        planets,
		Aspects:        aspects,
		InfluenceScore: InfluenceScore(aspects),
	}, nil
}

func (s *service) transitPositions(at time.Time) (map[string]PlanetPosition, error) {
	jd := celestial.JulianDay(at)
	planets := make(map[string]PlanetPosition, len(celestial.Bodies))
	for _, body := range celestial.Bodies {
		pos, err := s.eph.PositionOf(jd, body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeEphemerisError, fmt.Sprintf("transit position for %s", body), err)
		}
		planets[body.String()] = PlanetPosition{
			Name:       body.String(),
			Longitude:  celestial.RoundLongitude(pos.Longitude),
			Latitude:   celestial.Round2(pos.Latitude),
			Sign:       celestial.SignOf(pos.Longitude),
			House:      1,
			Retrograde: pos.Speed < 0,
		}
	}
	return planets, nil
}

func (s *service) ZodiacSign(dob string) (SunSign, error) {
	sign, err := SunSignForDOB(dob)
	if err != nil {
		return SunSign{}, apperrors.Wrap(apperrors.CodeInvalidInput, "dob must be formatted as YYYY-MM-DD", err)
	}
	return sign, nil
}

func chartEphemerisError(what string, err error) error {
	inner := apperrors.Wrap(apperrors.CodeEphemerisError, what+" lookup failed", err)
	return apperrors.Wrap(apperrors.CodeChartError, "chart computation failed", inner)
}
