package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/repository"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

var required validate.RequiredFunc = validate.Required

type fakeRoles struct {
	byID   map[uint64]*model.Role
	nextID uint64
	// lostWrite makes Create succeed without persisting anything.
	lostWrite bool
}

var _ RoleStore = (*fakeRoles)(nil)

func newFakeRoles(names ...string) *fakeRoles {
	f := &fakeRoles{byID: map[uint64]*model.Role{}}
	for _, n := range names {
		_, _ = f.Create(context.Background(), n)
	}
	return f
}

func (f *fakeRoles) Create(_ context.Context, name string) (uint64, error) {
	for _, r := range f.byID {
		if r.Name == name {
			return 0, repository.ErrDuplicate
		}
	}
	f.nextID++
	if !f.lostWrite {
		f.byID[f.nextID] = &model.Role{ID: f.nextID, Name: name}
	}
	return f.nextID, nil
}

func (f *fakeRoles) GetByID(_ context.Context, id uint64) (*model.Role, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeRoles) GetByIDs(_ context.Context, ids []uint64) (map[uint64]model.Role, error) {
	out := map[uint64]model.Role{}
	for _, id := range ids {
		if r, ok := f.byID[id]; ok {
			out[id] = *r
		}
	}
	return out, nil
}

func (f *fakeRoles) List(_ context.Context) ([]model.Role, error) {
	out := []model.Role{}
	for _, r := range f.byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRoles) NameTaken(_ context.Context, name string, excludeID uint64) (bool, error) {
	for _, r := range f.byID {
		if r.Name == name && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoles) UpdateName(_ context.Context, id uint64, name string) error {
	if r, ok := f.byID[id]; ok {
		r.Name = name
	}
	return nil
}

func (f *fakeRoles) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeAreas struct {
	byID   map[uint64]*model.Area
	nextID uint64
}

var _ AreaStore = (*fakeAreas)(nil)

func newFakeAreas() *fakeAreas { return &fakeAreas{byID: map[uint64]*model.Area{}} }

func (f *fakeAreas) Create(_ context.Context, name string, pincode int) (uint64, error) {
	f.nextID++
	f.byID[f.nextID] = &model.Area{ID: f.nextID, Name: name, Pincode: pincode}
	return f.nextID, nil
}

func (f *fakeAreas) GetByID(_ context.Context, id uint64) (*model.Area, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeAreas) GetByIDs(_ context.Context, ids []uint64) (map[uint64]model.Area, error) {
	out := map[uint64]model.Area{}
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out[id] = *a
		}
	}
	return out, nil
}

func (f *fakeAreas) List(_ context.Context) ([]model.Area, error) {
	out := []model.Area{}
	for _, a := range f.byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAreas) PairTaken(_ context.Context, name string, pincode int, excludeID uint64) (bool, error) {
	for _, a := range f.byID {
		if a.Name == name && a.Pincode == pincode && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAreas) Update(_ context.Context, id uint64, name string, pincode int) error {
	if a, ok := f.byID[id]; ok {
		a.Name, a.Pincode = name, pincode
	}
	return nil
}

func (f *fakeAreas) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakePincodes []model.PostOffice

func (f fakePincodes) ListByPincode(_ context.Context, pincode int) ([]model.PostOffice, error) {
	out := []model.PostOffice{}
	for _, p := range f {
		if p.Pincode == pincode {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint64]*model.User
	nextID uint64
	// updates records every change set passed to Update.
	updates []repository.UserChanges
	// updateErr, when set, fails every Update after recording it.
	updateErr error
}

var _ UserStore = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]*model.User{}} }

func (f *fakeUsers) add(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = &u
	return &u
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if taken, _ := f.EmailTaken(context.Background(), u.Email, 0); taken {
		return repository.ErrDuplicate
	}
	created := f.add(*u)
	u.ID = created.ID
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByKarykarID(_ context.Context, k int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.KarykarID == k })
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUsers) GetByIDs(_ context.Context, ids []uint64) (map[uint64]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uint64]model.User{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (f *fakeUsers) List(_ context.Context, roleID uint64) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.byID {
		if roleID == 0 || u.RoleID == roleID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KarykarID < out[j].KarykarID })
	return out, nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string, excludeID uint64) (bool, error) {
	_, err := f.find(func(u *model.User) bool { return u.Email == email && u.ID != excludeID })
	return err == nil, nil
}

func (f *fakeUsers) CountByRole(_ context.Context, roleID uint64) (int, error) {
	users, _ := f.List(context.Background(), roleID)
	return len(users), nil
}

func (f *fakeUsers) Update(_ context.Context, id uint64, c repository.UserChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, c)
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.Avatar != nil {
		u.Avatar = *c.Avatar
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.RoleID != nil {
		u.RoleID = *c.RoleID
	}
	return nil
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id uint64, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		if token == nil {
			u.RefreshToken = nil
		} else {
			t := *token
			u.RefreshToken = &t
		}
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSabhas struct {
	byID   map[uint64]*model.Sabha
	nextID uint64
	// pairChecks records every (name, areaID) PairTaken was asked about.
	pairChecks [][2]any
}

var _ SabhaStore = (*fakeSabhas)(nil)

func newFakeSabhas() *fakeSabhas { return &fakeSabhas{byID: map[uint64]*model.Sabha{}} }

func (f *fakeSabhas) clone(s *model.Sabha) *model.Sabha {
	c := *s
	c.SahSanchalakIDs = append([]uint64{}, s.SahSanchalakIDs...)
	return &c
}

func (f *fakeSabhas) Create(_ context.Context, s *model.Sabha) error {
	f.nextID++
	s.ID = f.nextID
	f.byID[s.ID] = f.clone(s)
	return nil
}

func (f *fakeSabhas) GetByID(_ context.Context, id uint64) (*model.Sabha, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.clone(s), nil
}

func (f *fakeSabhas) List(_ context.Context) ([]*model.Sabha, error) {
	out := []*model.Sabha{}
	for _, s := range f.byID {
		out = append(out, f.clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSabhas) PairTaken(_ context.Context, name string, areaID, excludeID uint64) (bool, error) {
	f.pairChecks = append(f.pairChecks, [2]any{name, areaID})
	for _, s := range f.byID {
		if s.Name == name && s.AreaID == areaID && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSabhas) Update(_ context.Context, s *model.Sabha) error {
	f.byID[s.ID] = f.clone(s)
	return nil
}

func (f *fakeSabhas) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSabhas) CountByArea(_ context.Context, areaID uint64) (int, error) {
	n := 0
	for _, s := range f.byID {
		if s.AreaID == areaID {
			n++
		}
	}
	return n, nil
}

func (f *fakeSabhas) CountReferencingUser(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, s := range f.byID {
		for _, id := range s.UserIDs() {
			if id == userID {
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeUploader struct {
	got     string
	removed []string
}

func (f *fakeUploader) Upload(_ context.Context, filename string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.got = string(b)
	return "/uploads/" + strings.ToLower(filename), nil
}

func (f *fakeUploader) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fakeNotifier struct {
	sent chan model.User
}

func (f *fakeNotifier) NotifyRegistered(_ context.Context, u model.User) error {
	f.sent <- u
	return nil
}
