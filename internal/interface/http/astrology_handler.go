package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/pkg/util"
)

// NatalChart computes a birth chart.
func (h *Handler) NatalChart(c *gin.Context) {
	var req astrology.BirthInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return
	}
	chart, err := h.astroSvc.NatalChart(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, codeNatalChartFailed))
		return
	}
	c.JSON(http.StatusOK, chart)
}

// DailyTransits scores the transits of ?date (default today) against the
// natal chart in the body.
func (h *Handler) DailyTransits(c *gin.Context) {
	var chart astrology.NatalChart
	if err := c.ShouldBindJSON(&chart); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return
	}
	if len(chart.Planets) == 0 {
		abortWithError(c, invalidRequest("natal chart has no planets", nil))
		return
	}
	at := util.NowUTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := util.ParseDate(raw)
		if err != nil {
			abortWithError(c, invalidRequest("invalid date format", err))
			return
		}
		at = date.Add(12 * time.Hour)
	}
	transits, err := h.astroSvc.DailyTransits(c.Request.Context(), at, chart)
	if err != nil {
		abortWithError(c, domainError(err, codeTransitsFailed))
		return
	}
	c.JSON(http.StatusOK, transits)
}

// ZodiacSign returns the date-table sun sign for ?dob.
func (h *Handler) ZodiacSign(c *gin.Context) {
	sign, err := h.astroSvc.ZodiacSign(c.Query("dob"))
	if err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, sign)
}
