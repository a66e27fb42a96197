package service

import (
	"context"
	"strings"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const (
	msgAreaExists   = "Area already exists"
	msgAreaNotFound = "Area not found"
)

// AreaCounter reports how many sabhas sit in an area.
type AreaCounter interface {
	CountByArea(ctx context.Context, areaID uint64) (int, error)
}

// AreaService keeps every area consistent with the postal reference table:
// an area's name must be contained in the name of some post office
// registered under the same pincode.
type AreaService struct {
	areas    AreaStore
	pincodes PincodeStore
	sabhas   AreaCounter
	required validate.RequiredFunc
}

func NewAreaService(areas AreaStore, pincodes PincodeStore, sabhas AreaCounter, required validate.RequiredFunc) *AreaService {
	return &AreaService{areas: areas, pincodes: pincodes, sabhas: sabhas, required: required}
}

// AreaUpdate carries the fields supplied on update; nil means unchanged.
type AreaUpdate struct {
	Name    *string
	Pincode *int
}

// checkReference fails with 400 unless a post office under pincode matches name.
func (s *AreaService) checkReference(ctx context.Context, name string, pincode int) error {
	offices, err := s.pincodes.ListByPincode(ctx, pincode)
	if err != nil {
		return storeErr(err)
	}
	for _, o := range offices {
		if validate.OfficeMatches(o.OfficeName, name) {
			return nil
		}
	}
	return apperr.BadRequest("No post office matching %q exists for pincode %d", name, pincode)
}

func (s *AreaService) Create(ctx context.Context, name string, pincode int) (*model.Area, error) {
	name = strings.TrimSpace(name)
	if err := s.required(validate.Text("name", name), validate.Int("pincode", pincode)); err != nil {
		return nil, err
	}
	if err := s.checkReference(ctx, name, pincode); err != nil {
		return nil, err
	}
	taken, err := s.areas.PairTaken(ctx, name, pincode, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict(msgAreaExists)
	}
	id, err := s.areas.Create(ctx, name, pincode)
	if err != nil {
		return nil, conflictOr(err, msgAreaExists)
	}
	area, err := s.areas.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while creating the Area", err)
	}
	return area, nil
}

func (s *AreaService) List(ctx context.Context) ([]model.Area, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return areas, nil
}

// Update applies the supplied fields.  Whenever the effective name or
// pincode differs from the stored one, the pair is revalidated against the
// reference table and against other areas.
func (s *AreaService) Update(ctx context.Context, id uint64, in AreaUpdate) (*model.Area, error) {
	if err := s.required(validate.ID("id", id)); err != nil {
		return nil, err
	}
	if in.Name == nil && in.Pincode == nil {
		return nil, apperr.BadRequest("Name or Pincode is required")
	}
	cur, err := s.areas.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgAreaNotFound)
	}
	name, pincode := cur.Name, cur.Pincode
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if err := s.required(validate.Text("name", name)); err != nil {
			return nil, err
		}
	}
	if in.Pincode != nil {
		pincode = *in.Pincode
		if err := s.required(validate.Int("pincode", pincode)); err != nil {
			return nil, err
		}
	}
	if name == cur.Name && pincode == cur.Pincode {
		return cur, nil
	}
	if err := s.checkReference(ctx, name, pincode); err != nil {
		return nil, err
	}
	taken, err := s.areas.PairTaken(ctx, name, pincode, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict(msgAreaExists)
	}
	if err := s.areas.Update(ctx, id, name, pincode); err != nil {
		return nil, conflictOr(err, msgAreaExists)
	}
	area, err := s.areas.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgAreaNotFound)
	}
	return area, nil
}

// Delete removes an area no sabha is located in.
func (s *AreaService) Delete(ctx context.Context, id uint64) error {
	if err := s.required(validate.ID("id", id)); err != nil {
		return err
	}
	if _, err := s.areas.GetByID(ctx, id); err != nil {
		return notFoundOr(err, msgAreaNotFound)
	}
	n, err := s.sabhas.CountByArea(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return apperr.Conflict("Area is used by %d sabha(s)", n)
	}
	if err := s.areas.Delete(ctx, id); err != nil {
		return notFoundOr(err, msgAreaNotFound)
	}
	return nil
}

// PostOffices lists the reference offices under pincode.
func (s *AreaService) PostOffices(ctx context.Context, pincode int) ([]model.PostOffice, error) {
	if err := s.required(validate.Int("pincode", pincode)); err != nil {
		return nil, err
	}
	offices, err := s.pincodes.ListByPincode(ctx, pincode)
	if err != nil {
		return nil, storeErr(err)
	}
	return offices, nil
}
