package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/internal/domain/luck"
)

// CalculateLuck returns the full luck reading.
func (h *Handler) CalculateLuck(c *gin.Context) {
	req, ok := h.bindLuckRequest(c)
	if !ok {
		return
	}
	resp, err := h.luckSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, codeLuckFailed))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Forecast returns the seven day trajectory.
func (h *Handler) Forecast(c *gin.Context) {
	req, ok := h.bindLuckRequest(c)
	if !ok {
		return
	}
	forecast, err := h.luckSvc.Forecast(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, codeForecastFailed))
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// ForecastCalendar returns the forecast as an iCalendar attachment.
func (h *Handler) ForecastCalendar(c *gin.Context) {
	req, ok := h.bindLuckRequest(c)
	if !ok {
		return
	}
	body, err := h.luckSvc.ForecastCalendar(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, codeForecastFailed))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="omniluck-forecast.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

// History lists stored scores for :uid. Authenticated callers may only read
// their own history.
func (h *Handler) History(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("uid"))
	if subject, ok := subjectFrom(c); ok && subject != uid {
		abortWithError(c, NewHTTPError(http.StatusForbidden, codeForbidden, "history belongs to another user", nil))
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			abortWithError(c, invalidRequest("days must be a positive integer", err))
			return
		}
		days = n
	}
	history, err := h.luckSvc.History(c.Request.Context(), uid, days)
	if err != nil {
		abortWithError(c, domainError(err, codeHistoryFailed))
		return
	}
	c.JSON(http.StatusOK, history)
}

// bindLuckRequest decodes the body and binds the token subject as the uid.
func (h *Handler) bindLuckRequest(c *gin.Context) (luck.Request, bool) {
	var req luck.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, invalidRequest(errMessage(err), err))
		return luck.Request{}, false
	}
	if subject, ok := subjectFrom(c); ok {
		uid := strings.TrimSpace(req.UID)
		if uid != "" && uid != subject {
			abortWithError(c, NewHTTPError(http.StatusForbidden, codeForbidden, "uid does not match token subject", nil))
			return luck.Request{}, false
		}
		req.UID = subject
	}
	return req, true
}
