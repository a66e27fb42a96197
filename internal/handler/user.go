package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/middleware"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/service"
)

type UserService interface {
	Create(ctx context.Context, in service.UserInput) (*model.UserView, error)
	Get(ctx context.Context, karykarID int64) (*model.UserView, error)
	Me(ctx context.Context, id uint64) (*model.UserView, error)
	List(ctx context.Context) ([]model.UserView, error)
	ListByRole(ctx context.Context, roleID uint64) ([]model.UserView, error)
	Update(ctx context.Context, karykarID int64, in service.UserUpdate) (*model.UserView, error)
	Delete(ctx context.Context, karykarID int64) error
}

// UserHandler serves the /user resource.  Writes are multipart so an avatar
// can travel with the fields; users are addressed by karykarID.
type UserHandler struct {
	base
	svc UserService
}

func NewUserHandler(svc UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{base: base{log: log}, svc: svc}
}

func karykarParam(c echo.Context) (int64, error) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.BadRequest("Invalid karykarID")
	}
	return n, nil
}

// formValues returns the submitted fields; absent keys stay absent.
func formValues(c echo.Context) (url.Values, error) {
	v, err := c.FormParams()
	if err != nil {
		return nil, apperr.BadRequest("Invalid form body")
	}
	return v, nil
}

func formField(v url.Values, key string) *string {
	vs, ok := v[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	s := vs[0]
	return &s
}

func formID(v url.Values, key string) (*uint64, error) {
	s := formField(v, key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return nil, apperr.BadRequest("Invalid %s", key)
	}
	return &id, nil
}

// avatarUpload opens the optional "avatar" file.  The returned closer is
// never nil.
func avatarUpload(c echo.Context) (*service.Upload, func(), error) {
	fh, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperr.BadRequest("Invalid avatar upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperr.BadRequest("Invalid avatar upload")
	}
	return &service.Upload{Filename: fh.Filename, Body: f}, func() { _ = f.Close() }, nil
}

func (h *UserHandler) Create(c echo.Context) error {
	form, err := formValues(c)
	if err != nil {
		return h.fail(c, err)
	}
	roleID, err := formID(form, "roleId")
	if err != nil {
		return h.fail(c, err)
	}
	avatar, closeAvatar, err := avatarUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer closeAvatar()

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Create(ctx, service.UserInput{
		Name:     deref(formField(form, "name")),
		Email:    deref(formField(form, "email")),
		Password: deref(formField(form, "password")),
		RoleID:   deref(roleID),
		Avatar:   avatar,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusCreated, v, "User registered successfully")
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.svc.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, users, "Users fetched successfully")
}

func (h *UserHandler) Get(c echo.Context) error {
	k, err := karykarParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Get(ctx, k)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, v, "User fetched successfully")
}

func (h *UserHandler) ListByRole(c echo.Context) error {
	roleID, err := pathID(c, "roleId")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.svc.ListByRole(ctx, roleID)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, users, "Users fetched successfully")
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c echo.Context) error {
	u, found := middleware.CurrentUser(c)
	if !found {
		return h.fail(c, apperr.Unauthorized("Unauthorized request"))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Me(ctx, u.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, v, "User fetched successfully")
}

func (h *UserHandler) Update(c echo.Context) error {
	k, err := karykarParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	form, err := formValues(c)
	if err != nil {
		return h.fail(c, err)
	}
	roleID, err := formID(form, "roleId")
	if err != nil {
		return h.fail(c, err)
	}
	avatar, closeAvatar, err := avatarUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	defer closeAvatar()

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Update(ctx, k, service.UserUpdate{
		Name:     formField(form, "name"),
		Email:    formField(form, "email"),
		Password: formField(form, "password"),
		RoleID:   roleID,
		Avatar:   avatar,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, v, "User updated successfully")
}

func (h *UserHandler) Delete(c echo.Context) error {
	k, err := karykarParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, k); err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "User deleted successfully")
}
