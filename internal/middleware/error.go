package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/handler"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// ErrorResponse represents a standardized error response. Status is always
// "error" so clients can read it like any other envelope.
type ErrorResponse struct {
	Status  string            `json:"status"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func newErrorResponse(c *gin.Context, code int, message string) ErrorResponse {
	return ErrorResponse{
		Status:  handler.StatusError,
		Code:    code,
		Message: message,
		TraceID: RequestIDFrom(c),
	}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		status, message := classify(lastErr)

		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(lastErr).
			Str("trace_id", RequestIDFrom(c)).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Msg("Request error")

		c.JSON(status, newErrorResponse(c, status, message))
	}
}

// classify maps an error to a status and a message safe to show clients.
func classify(err error) (int, string) {
	if appErr, ok := apperrors.As(err); ok {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			return status, "internal server error"
		}
		return status, appErr.Message
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timeout"
	case errors.Is(err, context.Canceled):
		return 499, "request cancelled"
	}

	// Check if it's a custom error type
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode(), err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
