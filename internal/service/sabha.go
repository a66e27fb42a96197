package service

import (
	"context"
	"strings"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const (
	msgSabhaExists   = "Sabha with this name and area already exists"
	msgSabhaNotFound = "Sabha not found"
)

// AreaLookup resolves area references.
type AreaLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Area, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Area, error)
}

// UserLookup resolves user references.
type UserLookup interface {
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
}

type SabhaService struct {
	sabhas   SabhaStore
	areas    AreaLookup
	users    UserLookup
	required validate.RequiredFunc
}

func NewSabhaService(sabhas SabhaStore, areas AreaLookup, users UserLookup, required validate.RequiredFunc) *SabhaService {
	return &SabhaService{sabhas: sabhas, areas: areas, users: users, required: required}
}

// SabhaInput is the body of a create request.
type SabhaInput struct {
	Name            string
	AreaID          uint64
	SanchalakID     uint64
	NirikshakID     uint64
	SahSanchalakIDs []uint64
}

// SabhaUpdate carries the fields supplied on update; nil means unchanged.
type SabhaUpdate struct {
	Name            *string
	AreaID          *uint64
	SanchalakID     *uint64
	NirikshakID     *uint64
	SahSanchalakIDs *[]uint64
}

func (u SabhaUpdate) empty() bool {
	return u.Name == nil && u.AreaID == nil && u.SanchalakID == nil && u.NirikshakID == nil && u.SahSanchalakIDs == nil
}

// checkPair fails with 409 when another sabha already uses (name, areaID).
func (s *SabhaService) checkPair(ctx context.Context, name string, areaID, excludeID uint64) error {
	taken, err := s.sabhas.PairTaken(ctx, name, areaID, excludeID)
	if err != nil {
		return storeErr(err)
	}
	if taken {
		return apperr.Conflict(msgSabhaExists)
	}
	return nil
}

// checkRefs verifies the area and every referenced user exist.  The 404
// names the first relation that does not resolve.
func (s *SabhaService) checkRefs(ctx context.Context, sb *model.Sabha) error {
	if _, err := s.areas.GetByID(ctx, sb.AreaID); err != nil {
		return notFoundOr(err, msgAreaNotFound)
	}
	users, err := s.users.GetByIDs(ctx, sb.UserIDs())
	if err != nil {
		return storeErr(err)
	}
	if _, ok := users[sb.SanchalakID]; !ok {
		return apperr.NotFound("Sanchalak not found")
	}
	if _, ok := users[sb.NirikshakID]; !ok {
		return apperr.NotFound("Nirikshak not found")
	}
	for _, id := range sb.SahSanchalakIDs {
		if _, ok := users[id]; !ok {
			return apperr.NotFound("Sah-sanchalak %d not found", id)
		}
	}
	return nil
}

func (s *SabhaService) Create(ctx context.Context, in SabhaInput) (*model.SabhaView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.required(
		validate.Text("name", in.Name),
		validate.ID("areaId", in.AreaID),
		validate.ID("sanchalakId", in.SanchalakID),
		validate.ID("nirikshakId", in.NirikshakID),
		validate.IDs("sahSanchalakId", in.SahSanchalakIDs),
	); err != nil {
		return nil, err
	}
	if err := s.checkPair(ctx, in.Name, in.AreaID, 0); err != nil {
		return nil, err
	}
	sb := &model.Sabha{
		Name:            in.Name,
		AreaID:          in.AreaID,
		SanchalakID:     in.SanchalakID,
		NirikshakID:     in.NirikshakID,
		SahSanchalakIDs: in.SahSanchalakIDs,
	}
	if err := s.checkRefs(ctx, sb); err != nil {
		return nil, err
	}
	if err := s.sabhas.Create(ctx, sb); err != nil {
		return nil, conflictOr(err, msgSabhaExists)
	}
	created, err := s.sabhas.GetByID(ctx, sb.ID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while creating Sabha", err)
	}
	return s.view(ctx, created)
}

func (s *SabhaService) Get(ctx context.Context, id uint64) (*model.SabhaView, error) {
	sb, err := s.sabhas.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgSabhaNotFound)
	}
	return s.view(ctx, sb)
}

func (s *SabhaService) List(ctx context.Context) ([]model.SabhaView, error) {
	list, err := s.sabhas.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.views(ctx, list)
}

// Update applies the supplied fields to the stored sabha.  Uniqueness is
// checked against the effective (name, areaId) pair after the update, so
// supplying only one of them still compares against the other's stored value.
func (s *SabhaService) Update(ctx context.Context, id uint64, in SabhaUpdate) (*model.SabhaView, error) {
	if err := s.required(validate.ID("id", id)); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, apperr.BadRequest("Nothing to update")
	}
	sb, err := s.sabhas.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgSabhaNotFound)
	}
	var supplied []validate.Field
	if in.Name != nil {
		sb.Name = strings.TrimSpace(*in.Name)
		supplied = append(supplied, validate.Text("name", sb.Name))
	}
	if in.AreaID != nil {
		sb.AreaID = *in.AreaID
		supplied = append(supplied, validate.ID("areaId", sb.AreaID))
	}
	if in.SanchalakID != nil {
		sb.SanchalakID = *in.SanchalakID
		supplied = append(supplied, validate.ID("sanchalakId", sb.SanchalakID))
	}
	if in.NirikshakID != nil {
		sb.NirikshakID = *in.NirikshakID
		supplied = append(supplied, validate.ID("nirikshakId", sb.NirikshakID))
	}
	if in.SahSanchalakIDs != nil {
		sb.SahSanchalakIDs = *in.SahSanchalakIDs
		supplied = append(supplied, validate.IDs("sahSanchalakId", sb.SahSanchalakIDs))
	}
	if err := s.required(supplied...); err != nil {
		return nil, err
	}
	if in.Name != nil || in.AreaID != nil {
		if err := s.checkPair(ctx, sb.Name, sb.AreaID, sb.ID); err != nil {
			return nil, err
		}
	}
	if err := s.checkRefs(ctx, sb); err != nil {
		return nil, err
	}
	if err := s.sabhas.Update(ctx, sb); err != nil {
		return nil, conflictOr(err, msgSabhaExists)
	}
	return s.Get(ctx, id)
}

func (s *SabhaService) Delete(ctx context.Context, id uint64) error {
	if err := s.required(validate.ID("id", id)); err != nil {
		return err
	}
	if err := s.sabhas.Delete(ctx, id); err != nil {
		return notFoundOr(err, msgSabhaNotFound)
	}
	return nil
}

func (s *SabhaService) view(ctx context.Context, sb *model.Sabha) (*model.SabhaView, error) {
	views, err := s.views(ctx, []*model.Sabha{sb})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views joins each sabha with its area and users using one lookup per
// referenced collection.
func (s *SabhaService) views(ctx context.Context, list []*model.Sabha) ([]model.SabhaView, error) {
	out := make([]model.SabhaView, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	var areaIDs, userIDs []uint64
	for _, sb := range list {
		areaIDs = append(areaIDs, sb.AreaID)
		userIDs = append(userIDs, sb.UserIDs()...)
	}
	areas, err := s.areas.GetByIDs(ctx, areaIDs)
	if err != nil {
		return nil, storeErr(err)
	}
	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err)
	}
	userRef := func(id uint64) *model.UserRef {
		u, ok := users[id]
		if !ok {
			return nil
		}
		ref := u.Ref()
		return &ref
	}
	for _, sb := range list {
		v := model.SabhaView{
			ID:           sb.ID,
			Name:         sb.Name,
			Sanchalak:    userRef(sb.SanchalakID),
			Nirikshak:    userRef(sb.NirikshakID),
			SahSanchalak: []model.UserRef{},
			CreatedAt:    sb.CreatedAt,
			UpdatedAt:    sb.UpdatedAt,
		}
		if a, ok := areas[sb.AreaID]; ok {
			ref := a.Ref()
			v.Area = &ref
		}
		for _, id := range sb.SahSanchalakIDs {
			if ref := userRef(id); ref != nil {
				v.SahSanchalak = append(v.SahSanchalak, *ref)
			}
		}
		out = append(out, v)
	}
	return out, nil
}
