package luck

import (
	"context"

	"github.com/yanqian/omniluck/internal/domain/astrology"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/util"
)

const (
	forecastDays   = 7
	trendSpan      = 3
	trendThreshold = 3.0
)

// Forecast projects the score for the target day and the six after it. Live
// weather is unknowable in advance, so every day uses the offline signals and
// a neutral self report.
func (s *service) Forecast(ctx context.Context, req Request) (Forecast, error) {
	ctx, span := tracer.Start(ctx, "luck.Forecast")
	defer span.End()

	req, start, err := s.normalize(req)
	if err != nil {
		return Forecast{}, err
	}

	var natal *astrology.NatalChart
	if hasBirthCoords(req) {
		chart, err := s.astro.NatalChart(ctx, birthInfo(req))
		switch {
		case err == nil:
			natal = &chart
		case apperrors.HasCode(err, apperrors.CodeEphemerisError):
			s.logger.Warn("natal chart unavailable for forecast", "error", err)
		default:
			return Forecast{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid birth data", err)
		}
	}

	trajectory := make([]ForecastDay, 0, forecastDays)
	for i := 0; i < forecastDays; i++ {
		if err := ctx.Err(); err != nil {
			return Forecast{}, err
		}
		day := start.AddDate(0, 0, i)
		profile, err := s.numero.Profile(req.DOB, req.Name, day)
		if err != nil {
			return Forecast{}, err
		}
		c := Components{
			AstrologyScore:  NeutralScore,
			NatalPotential:  NeutralScore,
			NumerologyScore: profile.HarmonyScore,
			CosmicWeather:   clamp(s.signals.Offline(day).TotalInfluenceScore, 0, 100),
			IntuitionScore:  NeutralScore,
		}
		aspects := []string{}
		if natal != nil {
			c.NatalPotential = natal.StrengthScore
			transits, err := s.astro.DailyTransits(ctx, transitInstant(day), *natal)
			if err != nil {
				s.logger.Warn("forecast transits unavailable", "date", day.Format(util.DateLayout), "error", err)
			} else {
				c.AstrologyScore = transits.InfluenceScore
				for _, a := range astrology.TopAspects(transits.Aspects, topAspectCount) {
					aspects = append(aspects, a.Label())
				}
			}
		}
		trajectory = append(trajectory, ForecastDay{
			Date:          day.Format(util.DateLayout),
			LuckScore:     Compose(c),
			TransitsScore: c.AstrologyScore,
			MajorAspects:  aspects,
		})
	}

	return Forecast{
		Trajectory:     trajectory,
		TrendDirection: TrendOf(trajectory),
		BestDay:        BestDay(trajectory),
	}, nil
}

// TrendOf compares the mean of the last three days with the first three.
func TrendOf(days []ForecastDay) string {
	if len(days) < trendSpan {
		return TrendStable
	}
	diff := meanScore(days[len(days)-trendSpan:]) - meanScore(days[:trendSpan])
	switch {
	case diff > trendThreshold:
		return TrendRising
	case diff < -trendThreshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// BestDay is the date of the highest score; the earliest wins ties.
func BestDay(days []ForecastDay) string {
	best := -1
	date := ""
	for _, d := range days {
		if d.LuckScore > best {
			best = d.LuckScore
			date = d.Date
		}
	}
	return date
}

func meanScore(days []ForecastDay) float64 {
	sum := 0
	for _, d := range days {
		sum += d.LuckScore
	}
	return float64(sum) / float64(len(days))
}
