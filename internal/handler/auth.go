package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/middleware"
	"github.com/iliyamo/sabha-admin/internal/service"
	"github.com/iliyamo/sabha-admin/internal/utils"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.Session, error)
	Refresh(ctx context.Context, raw string) (*service.Session, error)
	Logout(ctx context.Context, userID uint64) error
	ChangePassword(ctx context.Context, userID uint64, in service.ChangePasswordInput) error
}

// CookieOptions are the deployment-controlled flags of the session cookies.
type CookieOptions struct {
	Secure   bool
	SameSite string // lax | strict | none
}

func (o CookieOptions) sameSite() http.SameSite {
	switch strings.ToLower(o.SameSite) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteNoneMode
	}
}

// AuthHandler bundles the session endpoints.
type AuthHandler struct {
	base
	svc     AuthService
	cookies CookieOptions
}

func NewAuthHandler(svc AuthService, cookies CookieOptions, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{base: base{log: log}, svc: svc, cookies: cookies}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordReq struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResp struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) cookie(name, value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.sameSite(),
		Expires:  exp,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}

func (h *AuthHandler) setSession(c echo.Context, t utils.TokenPair) {
	c.SetCookie(h.cookie(middleware.AccessCookie, t.Access.Token, t.Access.Exp))
	c.SetCookie(h.cookie(middleware.RefreshCookie, t.Refresh.Token, t.Refresh.Exp))
}

func (h *AuthHandler) clearSession(c echo.Context) {
	c.SetCookie(h.cookie(middleware.AccessCookie, "", time.Unix(0, 0)))
	c.SetCookie(h.cookie(middleware.RefreshCookie, "", time.Unix(0, 0)))
}

func (h *AuthHandler) respondSession(c echo.Context, s *service.Session, message string) error {
	h.setSession(c, s.Tokens)
	return ok(c, http.StatusOK, sessionResp{
		User:         s.User,
		AccessToken:  s.Tokens.Access.Token,
		RefreshToken: s.Tokens.Refresh.Token,
	}, message)
}

// Login verifies credentials, sets both cookies and returns the user.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.svc.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondSession(c, s, "User logged in successfully")
}

// Refresh rotates the session.  The refresh token comes from its cookie or,
// for non-browser clients, from the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var raw string
	if ck, err := c.Cookie(middleware.RefreshCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req refreshReq
		if err := bind(c, &req); err != nil {
			return h.fail(c, err)
		}
		raw = req.RefreshToken
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.svc.Refresh(ctx, raw)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respondSession(c, s, "Access token refreshed")
}

// Logout forgets the stored refresh token and clears both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, found := middleware.CurrentUser(c)
	if !found {
		return h.fail(c, apperr.Unauthorized("Unauthorized request"))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Logout(ctx, u.ID); err != nil {
		return h.fail(c, err)
	}
	h.clearSession(c)
	return ok(c, http.StatusOK, nil, "User logged out")
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, found := middleware.CurrentUser(c)
	if !found {
		return h.fail(c, apperr.Unauthorized("Unauthorized request"))
	}
	var req changePasswordReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.ChangePassword(ctx, u.ID, service.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "Password changed successfully")
}
