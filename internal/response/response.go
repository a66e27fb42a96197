// Package response writes the JSON envelope every endpoint answers with:
//
//	{"status": 200, "data": ..., "message": "...", "success": true}
//
// success is derived from the status code.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
)

type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func New(status int, data any, message string) Envelope {
	return Envelope{Status: status, Data: data, Message: message, Success: status < http.StatusBadRequest}
}

// JSON writes data wrapped in the envelope.
func JSON(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, New(status, data, message))
}

// Error renders err in the envelope.  *apperr.Error keeps its status and
// message; echo errors keep their status; anything else is logged and
// becomes a generic 500.
func Error(c echo.Context, log *zap.SugaredLogger, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError && log != nil {
			log.Errorw("request failed", "path", c.Path(), "error", err)
		}
		return JSON(c, ae.Status, nil, ae.Message)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return JSON(c, he.Code, nil, msg)
	}
	if log != nil {
		log.Errorw("unhandled error", "path", c.Path(), "error", err)
	}
	return JSON(c, http.StatusInternalServerError, nil, "Internal server error")
}

// ErrorHandler adapts Error for echo.Echo.HTTPErrorHandler so routing
// failures (404, 405) and panics recovered by middleware share the envelope.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = Error(c, log, err)
	}
}
