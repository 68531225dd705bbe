package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the {"error":{"code","message"}} envelope. Domain
// failures that carry an apperrors code reuse it; these cover the rest.
const (
	codeInvalidRequest   = "invalid_request"
	codeUnauthorized     = "unauthorized"
	codeAuthFailed       = "auth_failed"
	codeForbidden        = "forbidden"
	codeRateLimited      = "rate_limit_exceeded"
	codeBodyTooLarge     = "request_too_large"
	codeRequestCancelled = "request_cancelled"
	codeInternal         = "internal_error"

	codeNatalChartFailed = "natal_chart_failed"
	codeTransitsFailed   = "transits_failed"
	codeDrawingsFailed   = "drawings_failed"
	codeLuckFailed       = "luck_failed"
	codeForecastFailed   = "forecast_failed"
	codeHistoryFailed    = "history_failed"
)

// HTTPError is a luck API failure ready to be written as the error envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// invalidRequest reports a 400 for malformed birth data, dates or query values.
func invalidRequest(message string, err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, codeInvalidRequest, message, err)
}

// asHTTPError treats anything that is not already an HTTPError as an
// unexpected 500 so internal details never reach the client.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    codeInternal,
		Message: "luck service failed unexpectedly",
		Err:     err,
	}
}

func (e *HTTPError) body() gin.H {
	message := e.Message
	if message == "" {
		message = e.Error()
	}
	return gin.H{"error": gin.H{"code": e.Code, "message": message}}
}

// writeHTTPError renders the envelope outside gin, for wrappers that sit in
// front of the router.
func writeHTTPError(w http.ResponseWriter, e *HTTPError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e.body())
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
