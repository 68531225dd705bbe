package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/internal/domain/astrology"
	"github.com/yanqian/omniluck/internal/domain/auth"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/internal/domain/signals"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	astroSvc   astrology.Service
	signalsSvc signals.Service
	luckSvc    luck.Service
	lotterySvc lottery.StatsService
	authSvc    auth.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler. authSvc may be nil when
// bearer tokens are not configured.
func NewHandler(astroSvc astrology.Service, signalsSvc signals.Service, luckSvc luck.Service, lotterySvc lottery.StatsService, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		astroSvc:   astroSvc,
		signalsSvc: signalsSvc,
		luckSvc:    luckSvc,
		lotterySvc: lotterySvc,
		authSvc:    authSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Health is the liveness check.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// domainError maps an application error onto the transport status table.
// fallbackCode names the failure when the error carries no known code.
func domainError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		status, code = http.StatusBadRequest, codeInvalidRequest
	case apperrors.CodeChartError:
		code = apperrors.CodeChartError
		if !apperrors.HasCode(err, apperrors.CodeEphemerisError) {
			status = http.StatusUnprocessableEntity
		}
	case apperrors.CodeLotteryData:
		status, code = http.StatusBadGateway, apperrors.CodeLotteryData
	case apperrors.CodeLLMError:
		status, code = http.StatusBadGateway, apperrors.CodeLLMError
	case apperrors.CodeHistoryError:
		code = apperrors.CodeHistoryError
	case apperrors.CodeInvalidToken:
		status, code = http.StatusUnauthorized, apperrors.CodeInvalidToken
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
