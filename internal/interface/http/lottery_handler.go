package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxDrawingsLimit = 100

// LotteryStats returns hot and cold numbers. ?refresh=true bypasses the cache.
func (h *Handler) LotteryStats(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	c.JSON(http.StatusOK, h.lotterySvc.Stats(c.Request.Context(), refresh))
}

// LotteryDrawings returns recent Powerball results.
func (h *Handler) LotteryDrawings(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDrawingsLimit {
			abortWithError(c, invalidRequest("limit must be between 1 and 100", err))
			return
		}
		limit = n
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	result, err := h.lotterySvc.Drawings(c.Request.Context(), limit, refresh)
	if err != nil {
		abortWithError(c, domainError(err, codeDrawingsFailed))
		return
	}
	c.JSON(http.StatusOK, result)
}
