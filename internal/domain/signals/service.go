// Package signals scores environmental context for a day: lunar phase,
// local weather and geomagnetic activity.
package signals

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/omniluck/internal/domain/celestial"
	"github.com/yanqian/omniluck/pkg/util"
)

// WeatherSource fetches current conditions for a coordinate.
type WeatherSource interface {
	FetchWeather(ctx context.Context, lat, lon float64) (WeatherReading, error)
}

// GeomagneticSource fetches the latest planetary K-index.
type GeomagneticSource interface {
	FetchKp(ctx context.Context) (float64, error)
}

// Config tunes outbound fetches.
type Config struct {
	FetchTimeout time.Duration
}

// Service exposes the individual and combined signals. None of the methods
// fail: collaborator errors degrade to documented defaults.
type Service interface {
	LunarPhase(date time.Time) LunarPhase
	Weather(ctx context.Context, lat, lon float64) Weather
	Geomagnetic(ctx context.Context) Geomagnetic
	All(ctx context.Context, lat, lon float64, date time.Time) Cosmic
	Offline(date time.Time) Cosmic
}

type service struct {
	cfg         Config
	eph         celestial.Ephemeris
	weather     WeatherSource
	geomagnetic GeomagneticSource
	logger      *slog.Logger
	now         func() time.Time
}

// NewService wires the signal sources. A nil weather source means no API key
// is configured and the default weather is always used.
func NewService(cfg Config, eph celestial.Ephemeris, weather WeatherSource, geomagnetic GeomagneticSource, logger *slog.Logger) Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &service{
		cfg:         cfg,
		eph:         eph,
		weather:     weather,
		geomagnetic: geomagnetic,
		logger:      logger.With("component", "signals.service"),
		now:         util.NowUTC,
	}
}

func (s *service) LunarPhase(date time.Time) LunarPhase {
	phase, err := ComputeLunarPhase(s.eph, date)
	if err != nil {
		s.logger.Warn("lunar ephemeris failed, using synodic estimate", "date", date.Format(util.DateLayout), "error", err)
		return SynodicLunarPhase(date)
	}
	return phase
}

func (s *service) Weather(ctx context.Context, lat, lon float64) Weather {
	if s.weather == nil {
		return DefaultWeather()
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	reading, err := s.weather.FetchWeather(ctx, lat, lon)
	if err != nil {
		s.logger.Warn("weather fetch failed, using default", "lat", lat, "lon", lon, "error", err)
		return DefaultWeather()
	}
	return Weather{
		Condition:      reading.Condition,
		TempC:          round(reading.TempC, 1),
		TempF:          toFahrenheit(reading.TempC),
		Humidity:       reading.Humidity,
		Pressure:       reading.Pressure,
		InfluenceScore: WeatherInfluence(reading.Condition, reading.TempC, reading.Humidity),
		Source:         "openweathermap",
	}
}

func (s *service) Geomagnetic(ctx context.Context) Geomagnetic {
	if s.geomagnetic == nil {
		return DefaultGeomagnetic()
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	kp, err := s.geomagnetic.FetchKp(ctx)
	if err != nil || math.IsNaN(kp) {
		s.logger.Warn("geomagnetic fetch failed, using default", "error", err)
		return DefaultGeomagnetic()
	}
	return Geomagnetic{
		KpIndex:        round(kp, 1),
		ActivityLevel:  ActivityLevel(kp),
		InfluenceScore: GeomagneticInfluence(kp),
		Source:         "noaa-swpc",
	}
}

func (s *service) All(ctx context.Context, lat, lon float64, date time.Time) Cosmic {
	var (
		lunar       LunarPhase
		weather     Weather
		geomagnetic Geomagnetic
	)
	// Each branch degrades on its own, so the group never carries an error.
	var g errgroup.Group
	g.Go(func() error {
		lunar = s.LunarPhase(date)
		return nil
	})
	g.Go(func() error {
		weather = s.Weather(ctx, lat, lon)
		return nil
	})
	g.Go(func() error {
		geomagnetic = s.Geomagnetic(ctx)
		return nil
	})
	_ = g.Wait()
	return s.combine(lunar, weather, geomagnetic, date)
}

// Offline combines the computed lunar phase with default weather and
// geomagnetic readings; used for multi-day forecasts.
func (s *service) Offline(date time.Time) Cosmic {
	return s.combine(s.LunarPhase(date), DefaultWeather(), DefaultGeomagnetic(), date)
}

func (s *service) combine(lunar LunarPhase, weather Weather, geomagnetic Geomagnetic, date time.Time) Cosmic {
	return Cosmic{
		Lunar:               lunar,
		Weather:             weather,
		Geomagnetic:         geomagnetic,
		TotalInfluenceScore: CombineInfluence(lunar.InfluenceScore, weather.InfluenceScore, geomagnetic.InfluenceScore),
		Date:                date.Format(util.DateLayout),
		FetchedAt:           s.now(),
	}
}
