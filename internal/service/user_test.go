package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/sabha-admin/internal/asset"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/sequence"
	"github.com/iliyamo/sabha-admin/internal/utils"
)

type userFixture struct {
	svc      *UserService
	users    *fakeUsers
	sabhas   *fakeSabhas
	uploader *fakeUploader
	notifier *fakeNotifier
}

func newUserFixture() userFixture {
	f := userFixture{
		users:    newFakeUsers(),
		sabhas:   newFakeSabhas(),
		uploader: &fakeUploader{},
		notifier: &fakeNotifier{sent: make(chan model.User, 4)},
	}
	f.svc = NewUserService(UserDeps{
		Users:      f.users,
		Roles:      newFakeRoles("Admin", "Karykar"),
		Sabhas:     f.sabhas,
		Sequence:   sequence.NewMemory(),
		Avatars:    f.uploader,
		Notifier:   f.notifier,
		Required:   required,
		BcryptCost: bcrypt.MinCost,
	})
	return f
}

func amit() UserInput {
	return UserInput{Name: "amit shah", Email: "Amit@Example.com", Password: "Valid1Pass!", RoleID: 2}
}

func TestUserService_CreateDerivesIdentity(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	in := amit()
	in.Avatar = &Upload{Filename: "Me.PNG", Body: strings.NewReader("png-bytes")}
	v, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "0001", v.KarykarID)
	assert.Equal(t, "Amit0001", v.Username)
	assert.Equal(t, "amit@example.com", v.Email)
	assert.Equal(t, "/uploads/me.png", v.Avatar)
	assert.Equal(t, "png-bytes", f.uploader.got)
	require.NotNil(t, v.Role)
	assert.Equal(t, "Karykar", v.Role.Name)

	stored, err := f.users.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "Valid1Pass!"))
	assert.NotEqual(t, "Valid1Pass!", stored.PasswordHash)

	select {
	case u := <-f.notifier.sent:
		assert.Equal(t, v.ID, u.ID)
	case <-time.After(time.Second):
		t.Fatal("registration notification not sent")
	}
}

func TestUserService_CreateSequentialKarykarIDs(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	for i, email := range []string{"a@x.in", "b@x.in", "c@x.in"} {
		in := amit()
		in.Email = email
		v, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, model.FormatKarykarID(int64(i+1)), v.KarykarID)
	}
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	in := amit()
	in.Email = ""
	in.Password = ""
	_, err := f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "email is required", err.Error())

	in = amit()
	in.Email = "not-an-email"
	_, err = f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)

	in = amit()
	in.Password = "NoSpecial123"
	_, err = f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)

	in = amit()
	in.RoleID = 9
	_, err = f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Role not found", err.Error())

	_, err = f.svc.Create(ctx, amit())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, amit())
	requireStatus(t, err, http.StatusConflict)
}

func TestUserService_FailedValidationAllocatesNothing(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	in := amit()
	in.RoleID = 9
	_, err := f.svc.Create(ctx, in)
	require.Error(t, err)

	v, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)
	assert.Equal(t, "0001", v.KarykarID)
}

func TestUserService_UpdateRehashesOnlyOnChange(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)
	before, _ := f.users.GetByID(ctx, created.ID)

	same := "Valid1Pass!"
	name := "Amit Kumar"
	v, err := f.svc.Update(ctx, 1, UserUpdate{Name: &name, Password: &same})
	require.NoError(t, err)
	assert.Equal(t, "Amit Kumar", v.Name)
	assert.Equal(t, "Amit0001", v.Username)
	after, _ := f.users.GetByID(ctx, created.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Nil(t, f.users.updates[len(f.users.updates)-1].PasswordHash)

	weak := "short"
	_, err = f.svc.Update(ctx, 1, UserUpdate{Password: &weak})
	requireStatus(t, err, http.StatusBadRequest)

	fresh := "Another2Pass#"
	_, err = f.svc.Update(ctx, 1, UserUpdate{Password: &fresh})
	require.NoError(t, err)
	after, _ = f.users.GetByID(ctx, created.ID)
	assert.True(t, utils.VerifyPassword(after.PasswordHash, fresh))
}

func TestUserService_UpdateEmailAndRole(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)
	other := amit()
	other.Email = "ravi@x.in"
	_, err = f.svc.Create(ctx, other)
	require.NoError(t, err)

	taken := "AMIT@example.com"
	_, err = f.svc.Update(ctx, 2, UserUpdate{Email: &taken})
	requireStatus(t, err, http.StatusConflict)

	role := uint64(7)
	_, err = f.svc.Update(ctx, 2, UserUpdate{RoleID: &role})
	requireStatus(t, err, http.StatusNotFound)

	role = 1
	v, err := f.svc.Update(ctx, 2, UserUpdate{RoleID: &role})
	require.NoError(t, err)
	assert.Equal(t, "Admin", v.Role.Name)

	admins, err := f.svc.ListByRole(ctx, 1)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "0002", admins[0].KarykarID)

	_, err = f.svc.Update(ctx, 99, UserUpdate{RoleID: &role})
	requireStatus(t, err, http.StatusNotFound)
}

func TestUserService_GetAndList(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)

	v, err := f.svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Amit0001", v.Username)

	_, err = f.svc.Get(ctx, 2)
	requireStatus(t, err, http.StatusNotFound)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserService_DeleteBlockedWhileLeadingSabha(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	v, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)

	f.sabhas.byID[1] = &model.Sabha{ID: 1, SahSanchalakIDs: []uint64{v.ID}}
	requireStatus(t, f.svc.Delete(ctx, 1), http.StatusConflict)

	delete(f.sabhas.byID, 1)
	require.NoError(t, f.svc.Delete(ctx, 1))
	requireStatus(t, f.svc.Delete(ctx, 1), http.StatusNotFound)
}

type brokenSequence struct{}

func (brokenSequence) Next(context.Context, string) (int64, error) {
	return 0, errors.New("counters table locked")
}

func TestUserService_AvatarRejectedAsBadRequest(t *testing.T) {
	f := newUserFixture()
	dir := t.TempDir()
	f.svc.Avatars = asset.NewLocalStore(dir, "/uploads")
	ctx := context.Background()

	in := amit()
	in.Avatar = &Upload{Filename: "resume.txt", Body: strings.NewReader("cv")}
	_, err := f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)

	in = amit()
	in.Avatar = &Upload{Filename: "me.png", Body: strings.NewReader(strings.Repeat("x", asset.MaxAvatarBytes+1))}
	_, err = f.svc.Create(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.svc.Create(ctx, amit())
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, 1, UserUpdate{Avatar: &Upload{Filename: "notes.pdf", Body: strings.NewReader("pdf")}})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUserService_FailedCreateDiscardsAvatar(t *testing.T) {
	f := newUserFixture()
	f.svc.Sequence = brokenSequence{}
	in := amit()
	in.Avatar = &Upload{Filename: "me.png", Body: strings.NewReader("png")}

	_, err := f.svc.Create(context.Background(), in)
	requireStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, []string{"/uploads/me.png"}, f.uploader.removed)
}

func TestUserService_FailedUpdateDiscardsNewAvatar(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	_, err := f.svc.Create(ctx, amit())
	require.NoError(t, err)

	f.users.updateErr = errors.New("connection reset")
	_, err = f.svc.Update(ctx, 1, UserUpdate{Avatar: &Upload{Filename: "new.webp", Body: strings.NewReader("webp")}})
	requireStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, []string{"/uploads/new.webp"}, f.uploader.removed)
}

func TestUserService_NotifyInline(t *testing.T) {
	f := newUserFixture()
	f.svc.NotifyInline = true

	v, err := f.svc.Create(context.Background(), amit())
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, v.ID, (<-f.notifier.sent).ID)
}
