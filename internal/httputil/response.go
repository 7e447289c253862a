// Package httputil writes the issuer's JSON error responses.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/cardtoken/internal/errors"
)

// ErrorResponse is the body of every non-2xx issuer response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorMapping ties a sentinel to its status and public error code. An empty message
// exposes err.Error() to the caller.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first sentinel in err's chain wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested session was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "The request conflicts with the current state"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "A valid bearer token is required"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests, retry later"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "A dependency is temporarily unavailable"},
}

// HandleErrorGin writes the response for err and logs it with the request id. Errors
// that match no sentinel become a 500 with no details.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	for _, m := range errorMappings {
		if apperrors.Is(err, m.target) {
			status = m.status
			resp = ErrorResponse{Error: m.code, Message: m.message}
			if m.message == "" {
				resp.Message = err.Error()
			}
			break
		}
	}
	resp.RequestID = requestid.Get(c)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", resp.Error),
			slog.String("request_id", resp.RequestID),
			slog.Any("error", err),
		)
	}

	c.JSON(status, resp)
}

// HandleBadRequestGin writes a 400 for a body that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     "bad_request",
		Message:   err.Error(),
		RequestID: requestid.Get(c),
	})
}

// HandleValidationErrorGin writes a 422 for a decoded body that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:     "validation_error",
		Message:   err.Error(),
		RequestID: requestid.Get(c),
	})
}
