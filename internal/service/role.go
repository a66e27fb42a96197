package service

import (
	"context"
	"strings"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const (
	msgRoleExists   = "Role already exists"
	msgRoleNotFound = "Role not found"
)

// RoleCounter reports how many users hold a role.
type RoleCounter interface {
	CountByRole(ctx context.Context, roleID uint64) (int, error)
}

type RoleService struct {
	roles    RoleStore
	users    RoleCounter
	required validate.RequiredFunc
}

func NewRoleService(roles RoleStore, users RoleCounter, required validate.RequiredFunc) *RoleService {
	return &RoleService{roles: roles, users: users, required: required}
}

func (s *RoleService) Create(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if err := s.required(validate.Text("name", name)); err != nil {
		return nil, err
	}
	taken, err := s.roles.NameTaken(ctx, name, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict(msgRoleExists)
	}
	id, err := s.roles.Create(ctx, name)
	if err != nil {
		return nil, conflictOr(err, msgRoleExists)
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while creating the role", err)
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return roles, nil
}

// Update renames a role.  The new name is checked against every other role.
func (s *RoleService) Update(ctx context.Context, id uint64, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if err := s.required(validate.ID("id", id), validate.Text("name", name)); err != nil {
		return nil, err
	}
	if _, err := s.roles.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, msgRoleNotFound)
	}
	taken, err := s.roles.NameTaken(ctx, name, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict("Role with this name already exists")
	}
	if err := s.roles.UpdateName(ctx, id, name); err != nil {
		return nil, conflictOr(err, "Role with this name already exists")
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgRoleNotFound)
	}
	return role, nil
}

// Delete removes a role that no user holds.
func (s *RoleService) Delete(ctx context.Context, id uint64) error {
	if err := s.required(validate.ID("id", id)); err != nil {
		return err
	}
	if _, err := s.roles.GetByID(ctx, id); err != nil {
		return notFoundOr(err, msgRoleNotFound)
	}
	n, err := s.users.CountByRole(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return apperr.Conflict("Role is assigned to %d user(s)", n)
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return notFoundOr(err, msgRoleNotFound)
	}
	return nil
}
