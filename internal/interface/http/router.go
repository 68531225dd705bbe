package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		tracingMiddleware(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		astro := api.Group("/astrology")
		astro.POST("/natal-chart", handler.NatalChart)
		astro.POST("/daily-transits", handler.DailyTransits)
		astro.GET("/zodiac-sign", handler.ZodiacSign)

		sig := api.Group("/signals")
		sig.GET("/lunar-phase", handler.LunarPhase)
		sig.GET("/weather", handler.Weather)
		sig.GET("/geomagnetic", handler.Geomagnetic)
		sig.GET("/all", handler.AllSignals)

		luckRoutes := api.Group("/luck", authMiddleware(handler.authSvc))
		luckRoutes.POST("/calculate", handler.CalculateLuck)
		luckRoutes.POST("/forecast", handler.Forecast)
		luckRoutes.POST("/forecast.ics", handler.ForecastCalendar)
		luckRoutes.GET("/history/:uid", handler.History)

		lotteryRoutes := api.Group("/lottery")
		lotteryRoutes.GET("/stats", handler.LotteryStats)
		lotteryRoutes.GET("/drawings", handler.LotteryDrawings)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
