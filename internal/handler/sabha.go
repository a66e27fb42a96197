package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/service"
)

type SabhaService interface {
	Create(ctx context.Context, in service.SabhaInput) (*model.SabhaView, error)
	Get(ctx context.Context, id uint64) (*model.SabhaView, error)
	List(ctx context.Context) ([]model.SabhaView, error)
	Update(ctx context.Context, id uint64, in service.SabhaUpdate) (*model.SabhaView, error)
	Delete(ctx context.Context, id uint64) error
}

type SabhaHandler struct {
	base
	svc SabhaService
}

func NewSabhaHandler(svc SabhaService, log *zap.SugaredLogger) *SabhaHandler {
	return &SabhaHandler{base: base{log: log}, svc: svc}
}

// sabhaReq decodes both create and update bodies; absent fields stay nil.
type sabhaReq struct {
	Name           *string   `json:"name"`
	AreaID         *uint64   `json:"areaId"`
	SanchalakID    *uint64   `json:"sanchalakId"`
	NirikshakID    *uint64   `json:"nirikshakId"`
	SahSanchalakID *[]uint64 `json:"sahSanchalakId"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (h *SabhaHandler) Create(c echo.Context) error {
	var req sabhaReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Create(ctx, service.SabhaInput{
		Name:            deref(req.Name),
		AreaID:          deref(req.AreaID),
		SanchalakID:     deref(req.SanchalakID),
		NirikshakID:     deref(req.NirikshakID),
		SahSanchalakIDs: deref(req.SahSanchalakID),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusCreated, v, "Sabha created successfully")
}

func (h *SabhaHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.svc.List(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, list, "Sabha fetched successfully")
}

func (h *SabhaHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, v, "Sabha fetched successfully")
}

func (h *SabhaHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req sabhaReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.svc.Update(ctx, id, service.SabhaUpdate{
		Name:            req.Name,
		AreaID:          req.AreaID,
		SanchalakID:     req.SanchalakID,
		NirikshakID:     req.NirikshakID,
		SahSanchalakIDs: req.SahSanchalakID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, v, "Sabha updated successfully")
}

func (h *SabhaHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "Sabha deleted successfully")
}
