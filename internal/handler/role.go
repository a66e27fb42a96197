package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/model"
)

type RoleService interface {
	Create(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, id uint64, name string) (*model.Role, error)
	Delete(ctx context.Context, id uint64) error
}

type RoleHandler struct {
	base
	svc RoleService
}

func NewRoleHandler(svc RoleService, log *zap.SugaredLogger) *RoleHandler {
	return &RoleHandler{base: base{log: log}, svc: svc}
}

type roleReq struct {
	Name string `json:"name"`
}

func (h *RoleHandler) Create(c echo.Context) error {
	var req roleReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	role, err := h.svc.Create(ctx, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusCreated, role, "Role created successfully")
}

func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	roles, err := h.svc.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, roles, "Roles fetched successfully")
}

func (h *RoleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req roleReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	role, err := h.svc.Update(ctx, id, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, role, "Role updated successfully")
}

func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "Role deleted successfully")
}
