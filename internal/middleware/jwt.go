package middleware // middleware holds the request gates shared by protected routes

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/response"
)

// AccessCookie and RefreshCookie name the session cookies.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.User, error)
}

// Auth rejects requests without a valid access token.  The token is read
// from the accessToken cookie, falling back to an Authorization: Bearer
// header.  On success the user is stored in the context for CurrentUser.
func Auth(a Authenticator, log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := a.Authenticate(c.Request().Context(), AccessToken(c))
			if err != nil {
				return response.Error(c, log, err)
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

// AccessToken returns the raw access token presented with the request, or "".
func AccessToken(c echo.Context) string {
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
