// Package router builds the Echo instance: shared middleware, the public
// session endpoints and the authenticated admin routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/handler"
	"github.com/iliyamo/sabha-admin/internal/response"
)

// Handlers is everything the route table dispatches to.
type Handlers struct {
	Auth  *handler.AuthHandler
	Role  *handler.RoleHandler
	Area  *handler.AreaHandler
	Sabha *handler.SabhaHandler
	User  *handler.UserHandler
	DB    handler.Pinger
}

// Options are the per-deployment knobs of the HTTP surface.
type Options struct {
	CORSOrigin string
	// AssetDir and AssetURL expose locally stored avatars.  Empty AssetDir
	// means uploads live elsewhere.
	AssetDir string
	AssetURL string
	// RequireAuth guards every admin route; RateLimit guards the
	// credential endpoints.  Either may be nil.
	RequireAuth echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
}

// New returns an Echo instance with the full route table registered.
func New(h Handlers, opt Options, log *zap.SugaredLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler(log)

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{opt.CORSOrigin},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(requestLogger(log))

	if opt.AssetDir != "" && opt.AssetURL != "" {
		e.Static(opt.AssetURL, opt.AssetDir)
	}

	Register(e, h, opt)
	return e
}

// Register mounts the routes on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	if h.DB != nil {
		e.GET("/healthz", handler.Health(h.DB))
	}

	limited := chain(opt.RateLimit)
	e.POST("/login", h.Auth.Login, limited...)
	e.POST("/refresh-token", h.Auth.Refresh, limited...)

	g := e.Group("", chain(opt.RequireAuth)...)

	g.POST("/role/create", h.Role.Create)
	g.GET("/role", h.Role.List)
	g.PATCH("/role/update/:id", h.Role.Update)
	g.DELETE("/role/delete/:id", h.Role.Delete)

	g.POST("/area/create", h.Area.Create)
	g.GET("/area", h.Area.List)
	g.PATCH("/area/update/:id", h.Area.Update)
	g.DELETE("/area/delete/:id", h.Area.Delete)
	g.GET("/pincode/:pincode", h.Area.PostOffices)

	g.POST("/sabha/create", h.Sabha.Create)
	g.GET("/sabha", h.Sabha.List)
	g.GET("/sabha/:id", h.Sabha.Get)
	g.PATCH("/sabha/update/:id", h.Sabha.Update)
	g.DELETE("/sabha/delete/:id", h.Sabha.Delete)

	g.POST("/user/create", h.User.Create)
	g.GET("/user", h.User.List)
	g.GET("/user/me", h.User.Me)
	g.GET("/user/role/:roleId", h.User.ListByRole)
	g.GET("/user/:id", h.User.Get)
	g.PATCH("/user/update/:id", h.User.Update)
	g.DELETE("/user/delete/:id", h.User.Delete)
	g.POST("/user/logout", h.Auth.Logout)
	g.POST("/user/change-password", h.Auth.ChangePassword, limited...)
}

func chain(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

func requestLogger(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Warnw("request failed", append(fields, "error", v.Error)...)
				return nil
			}
			log.Infow("request", fields...)
			return nil
		},
	})
}
