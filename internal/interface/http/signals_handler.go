package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/pkg/util"
)

func (h *Handler) LunarPhase(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.signalsSvc.LunarPhase(date))
}

func (h *Handler) Weather(c *gin.Context) {
	lat, lon, ok := queryCoords(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.signalsSvc.Weather(c.Request.Context(), lat, lon))
}

func (h *Handler) Geomagnetic(c *gin.Context) {
	c.JSON(http.StatusOK, h.signalsSvc.Geomagnetic(c.Request.Context()))
}

// AllSignals combines lunar, weather and geomagnetic signals.
func (h *Handler) AllSignals(c *gin.Context) {
	lat, lon, ok := queryCoords(c)
	if !ok {
		return
	}
	date, ok := queryDate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.signalsSvc.All(c.Request.Context(), lat, lon, date))
}

func queryDate(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		now := util.NowUTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	date, err := util.ParseDate(raw)
	if err != nil {
		abortWithError(c, invalidRequest("invalid date format", err))
		return time.Time{}, false
	}
	return date, true
}

func queryCoords(c *gin.Context) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		abortWithError(c, invalidRequest("lat must be a number between -90 and 90", err))
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		abortWithError(c, invalidRequest("lon must be a number between -180 and 180", err))
		return 0, 0, false
	}
	return lat, lon, true
}
