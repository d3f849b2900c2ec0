package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"banner-earn-client/internal/common/errors"
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
}

// ErrorHandler converts errors attached to the gin context into JSON
// responses with the matching HTTP status. It must run before the handlers.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal error")
		}

		logError(logger, c, appErr)
		c.JSON(statusCode(appErr), ErrorResponse{
			Success:   false,
			Error:     appErr,
			Timestamp: time.Now().UTC(),
			RequestID: GetRequestID(c),
			Path:      c.Request.URL.Path,
		})
	}
}

// Recovery turns panics into internal-error responses instead of killing the
// process; no failure is fatal to the gateway.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Str("stack", string(debug.Stack())).
			Msgf("Panic recovered: %v", recovered)

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error")
		appErr.Cause = fmt.Errorf("panic: %v", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Success:   false,
			Error:     appErr,
			Timestamp: time.Now().UTC(),
			RequestID: GetRequestID(c),
			Path:      c.Request.URL.Path,
		})
	})
}

func statusCode(appErr *errors.AppError) int {
	switch appErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeBelowMinimum, errors.ErrCodeInsufficientBalance:
		return http.StatusBadRequest
	case errors.ErrCodeAuth, errors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeAlreadyClaimed:
		return http.StatusConflict
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(logger zerolog.Logger, c *gin.Context, appErr *errors.AppError) {
	evt := logger.Warn()
	if appErr.Code == errors.ErrCodeInternal || appErr.IsNetwork() {
		evt = logger.Error()
	} else if appErr.IsLocal() {
		evt = logger.Info()
	}
	if appErr.Cause != nil {
		evt = evt.AnErr("cause", appErr.Cause)
	}
	evt.
		Str("request_id", GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Msg(appErr.Message)
}
