package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/omniluck/internal/domain/auth"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
)

// authMiddleware validates an optional bearer token and stores its claims.
// Requests without a header pass through anonymously unless the service
// requires authentication.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	if svc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if svc.Required() {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, codeUnauthorized, "missing authorization header", nil))
				return
			}
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, codeUnauthorized, "invalid authorization header", nil))
			return
		}
		token := strings.TrimSpace(parts[1])
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			status := http.StatusForbidden
			code := apperrors.CodeInvalidToken
			if !apperrors.IsCode(err, apperrors.CodeInvalidToken) {
				status = http.StatusInternalServerError
				code = codeAuthFailed
			}
			abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
