package handler // handler maps HTTP requests onto the services and renders the envelope

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/response"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the request body into dst; any decoding failure is a 400.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// base carries what every handler needs to answer.
type base struct {
	log *zap.SugaredLogger
}

func (b base) fail(c echo.Context, err error) error {
	return response.Error(c, b.log, err)
}

func ok(c echo.Context, status int, data any, message string) error {
	return response.JSON(c, status, data, message)
}
