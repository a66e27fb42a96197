package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/service"
)

type AreaService interface {
	Create(ctx context.Context, name string, pincode int) (*model.Area, error)
	List(ctx context.Context) ([]model.Area, error)
	Update(ctx context.Context, id uint64, in service.AreaUpdate) (*model.Area, error)
	Delete(ctx context.Context, id uint64) error
	PostOffices(ctx context.Context, pincode int) ([]model.PostOffice, error)
}

type AreaHandler struct {
	base
	svc AreaService
}

func NewAreaHandler(svc AreaService, log *zap.SugaredLogger) *AreaHandler {
	return &AreaHandler{base: base{log: log}, svc: svc}
}

type areaReq struct {
	Name    *string `json:"name"`
	Pincode *int    `json:"pincode"`
}

func (h *AreaHandler) Create(c echo.Context) error {
	var req areaReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	var (
		name    string
		pincode int
	)
	if req.Name != nil {
		name = *req.Name
	}
	if req.Pincode != nil {
		pincode = *req.Pincode
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	area, err := h.svc.Create(ctx, name, pincode)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusCreated, area, "Area created successfully")
}

func (h *AreaHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	areas, err := h.svc.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, areas, "Areas fetched successfully")
}

func (h *AreaHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req areaReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	area, err := h.svc.Update(ctx, id, service.AreaUpdate{Name: req.Name, Pincode: req.Pincode})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, area, "Area updated successfully")
}

func (h *AreaHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "Area deleted successfully")
}

// PostOffices lists the reference offices for GET /pincode/:pincode.
func (h *AreaHandler) PostOffices(c echo.Context) error {
	pincode, err := strconv.Atoi(c.Param("pincode"))
	if err != nil || pincode <= 0 {
		return h.fail(c, apperr.BadRequest("Invalid pincode"))
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	offices, err := h.svc.PostOffices(ctx, pincode)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, offices, "Post offices fetched successfully")
}
