package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sabha-admin/internal/model"
)

func newAreaService() (*AreaService, *fakeAreas, *fakeSabhas) {
	areas := newFakeAreas()
	sabhas := newFakeSabhas()
	ref := fakePincodes{
		{OfficeName: "ABC Colony", Pincode: 382001},
		{OfficeName: "Sector 21 S.O", Pincode: 382021},
	}
	return NewAreaService(areas, ref, sabhas, required), areas, sabhas
}

func TestAreaService_CreateValidatesAgainstReference(t *testing.T) {
	svc, _, _ := newAreaService()
	ctx := context.Background()

	area, err := svc.Create(ctx, "abc colony", 382001)
	require.NoError(t, err)
	assert.Equal(t, "abc colony", area.Name)
	assert.Equal(t, 382001, area.Pincode)

	_, err = svc.Create(ctx, "xyz", 382001)
	requireStatus(t, err, http.StatusBadRequest)

	// right name, wrong pincode
	_, err = svc.Create(ctx, "abc colony", 382021)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestAreaService_CreateRequiredOrder(t *testing.T) {
	svc, _, _ := newAreaService()
	_, err := svc.Create(context.Background(), "", 0)
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "name is required", err.Error())

	_, err = svc.Create(context.Background(), "abc", 0)
	assert.Equal(t, "pincode is required", err.Error())
}

func TestAreaService_PairUniqueness(t *testing.T) {
	svc, _, _ := newAreaService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "ABC Colony", 382001)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "ABC Colony", 382001)
	requireStatus(t, err, http.StatusConflict)

	// same pincode, different matching name is a different pair
	_, err = svc.Create(ctx, "ABC", 382001)
	require.NoError(t, err)
}

func TestAreaService_UpdateRevalidatesChangedPair(t *testing.T) {
	svc, _, _ := newAreaService()
	ctx := context.Background()
	area, err := svc.Create(ctx, "ABC Colony", 382001)
	require.NoError(t, err)

	_, err = svc.Update(ctx, area.ID, AreaUpdate{})
	requireStatus(t, err, http.StatusBadRequest)

	pin := 382021
	_, err = svc.Update(ctx, area.ID, AreaUpdate{Pincode: &pin})
	requireStatus(t, err, http.StatusBadRequest)

	name := "Sector 21"
	updated, err := svc.Update(ctx, area.ID, AreaUpdate{Name: &name, Pincode: &pin})
	require.NoError(t, err)
	assert.Equal(t, "Sector 21", updated.Name)
	assert.Equal(t, 382021, updated.Pincode)

	_, err = svc.Update(ctx, 99, AreaUpdate{Name: &name})
	requireStatus(t, err, http.StatusNotFound)
}

func TestAreaService_DeleteBlockedBySabha(t *testing.T) {
	svc, _, sabhas := newAreaService()
	ctx := context.Background()
	area, err := svc.Create(ctx, "ABC Colony", 382001)
	require.NoError(t, err)

	sabhas.byID[1] = &model.Sabha{ID: 1, Name: "Yuva", AreaID: area.ID}
	requireStatus(t, svc.Delete(ctx, area.ID), http.StatusConflict)

	delete(sabhas.byID, 1)
	require.NoError(t, svc.Delete(ctx, area.ID))
}

func TestAreaService_PostOffices(t *testing.T) {
	svc, _, _ := newAreaService()
	offices, err := svc.PostOffices(context.Background(), 382021)
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, "Sector 21 S.O", offices[0].OfficeName)
}
