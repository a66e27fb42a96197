package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/config"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/response"
)

type tokenTable map[string]*model.User

func (t tokenTable) Authenticate(_ context.Context, raw string) (*model.User, error) {
	if u, ok := t[raw]; ok {
		return u, nil
	}
	return nil, apperr.Unauthorized("Invalid access token")
}

func serveAuth(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	var seen *model.User
	gate := Auth(tokenTable{"good": {ID: 7, Username: "Amit0007"}}, zap.NewNop().Sugar())
	e.GET("/user/me", func(c echo.Context) error {
		seen, _ = CurrentUser(c)
		return c.NoContent(http.StatusNoContent)
	}, gate)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuth_AcceptsCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "good"})
	rec, u := serveAuth(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, u)
	assert.Equal(t, uint64(7), u.ID)
}

func TestAuth_AcceptsBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec, u := serveAuth(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotNil(t, u)
}

func TestAuth_RejectsMissingOrBadToken(t *testing.T) {
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/user/me", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/user/me", nil)
			r.Header.Set(echo.HeaderAuthorization, "Bearer forged")
			return r
		}(),
	} {
		rec, u := serveAuth(t, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, u)

		var env response.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.False(t, env.Success)
		assert.Equal(t, http.StatusUnauthorized, env.Status)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.1.2.3")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login")

	cfg := config.RateLimitConfig{Prefix: "sabha:rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "sabha:rl:ip:10.1.2.3:route:POST /login", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "sabha:rl:user:guest", buildRateKey(cfg, c))

	c.Set(userKey, &model.User{ID: 12})
	assert.Equal(t, "sabha:rl:user:12", buildRateKey(cfg, c))
}

func TestNewTokenBucket_DisabledPassesThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop().Sugar())
	called := false
	h := mw(func(c echo.Context) error { called = true; return nil })

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), httptest.NewRecorder())
	require.NoError(t, h(c))
	assert.True(t, called)
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64("4"))
	assert.Equal(t, int64(0), asInt64(nil))
}
