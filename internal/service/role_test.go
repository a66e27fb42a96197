package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
)

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperr.StatusOf(err), err.Error())
}

func TestRoleService_CreateDuplicateIsConflict(t *testing.T) {
	svc := NewRoleService(newFakeRoles(), newFakeUsers(), required)
	ctx := context.Background()

	role, err := svc.Create(ctx, "  Admin ")
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)

	_, err = svc.Create(ctx, "Admin")
	requireStatus(t, err, http.StatusConflict)
}

func TestRoleService_CreateRequiresName(t *testing.T) {
	svc := NewRoleService(newFakeRoles(), newFakeUsers(), required)
	_, err := svc.Create(context.Background(), "   ")
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "name is required", err.Error())
}

func TestRoleService_CreateLostWriteIsInternal(t *testing.T) {
	roles := newFakeRoles()
	roles.lostWrite = true
	svc := NewRoleService(roles, newFakeUsers(), required)
	_, err := svc.Create(context.Background(), "Admin")
	requireStatus(t, err, http.StatusInternalServerError)
}

func TestRoleService_Update(t *testing.T) {
	roles := newFakeRoles("Admin", "Karykar")
	svc := NewRoleService(roles, newFakeUsers(), required)
	ctx := context.Background()

	_, err := svc.Update(ctx, 2, "Admin")
	requireStatus(t, err, http.StatusConflict)

	_, err = svc.Update(ctx, 9, "Viewer")
	requireStatus(t, err, http.StatusNotFound)

	role, err := svc.Update(ctx, 2, "Viewer")
	require.NoError(t, err)
	assert.Equal(t, "Viewer", role.Name)

	// renaming to its own name is not a conflict
	_, err = svc.Update(ctx, 2, "Viewer")
	require.NoError(t, err)
}

func TestRoleService_DeleteBlockedWhileAssigned(t *testing.T) {
	roles := newFakeRoles("Admin")
	users := newFakeUsers()
	users.add(model.User{Name: "amit", Email: "a@x.in", RoleID: 1})
	svc := NewRoleService(roles, users, required)
	ctx := context.Background()

	requireStatus(t, svc.Delete(ctx, 1), http.StatusConflict)

	_ = users.Delete(ctx, 1)
	require.NoError(t, svc.Delete(ctx, 1))
	requireStatus(t, svc.Delete(ctx, 1), http.StatusNotFound)
}

func TestRoleService_ListIsIdempotent(t *testing.T) {
	svc := NewRoleService(newFakeRoles("Admin", "Karykar"), newFakeUsers(), required)
	ctx := context.Background()
	first, err := svc.List(ctx)
	require.NoError(t, err)
	second, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}
