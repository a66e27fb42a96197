package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/asset"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/repository"
	"github.com/iliyamo/sabha-admin/internal/sequence"
	"github.com/iliyamo/sabha-admin/internal/utils"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const (
	msgUserNotFound = "User not found"
	msgEmailTaken   = "User with this email already exists"
)

// discardTimeout bounds the cleanup of an avatar whose write failed.
const discardTimeout = 5 * time.Second

// notifyTimeout bounds the detached registration notification.
const notifyTimeout = 10 * time.Second

// RoleLookup resolves role references.
type RoleLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Role, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Role, error)
}

// UserReferenceCounter reports how many sabhas a user leads or inspects.
type UserReferenceCounter interface {
	CountReferencingUser(ctx context.Context, userID uint64) (int, error)
}

// UserDeps wires a UserService.  Avatars and Notifier are optional.
// NotifyInline makes Create wait for the notifier; short-lived callers such
// as the CLI set it so the event is not lost when the process exits.
type UserDeps struct {
	Users      UserStore
	Roles      RoleLookup
	Sabhas     UserReferenceCounter
	Sequence   sequence.Allocator
	Avatars    AvatarUploader
	Notifier   RegistrationNotifier
	Required   validate.RequiredFunc
	BcryptCost   int
	NotifyInline bool
	Log          *zap.SugaredLogger
}

type UserService struct {
	UserDeps
}

func NewUserService(d UserDeps) *UserService {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return &UserService{UserDeps: d}
}

// UserInput is the body of a registration.
type UserInput struct {
	Name     string
	Email    string
	Password string
	RoleID   uint64
	Avatar   *Upload
}

// UserUpdate carries the fields supplied on update; nil means unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   *uint64
	Avatar   *Upload
}

func (u UserUpdate) empty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil && u.RoleID == nil && u.Avatar == nil
}

func hashPassword(plain string, cost int) (string, error) {
	hash, err := utils.HashPassword(plain, cost)
	if utils.IsPasswordTooLong(err) {
		return "", apperr.BadRequest("Password is too long")
	}
	if err != nil {
		return "", apperr.Internal(somethingWentWrong, err)
	}
	return hash, nil
}

func (s *UserService) uploadAvatar(ctx context.Context, up *Upload) (string, error) {
	if up == nil || s.Avatars == nil {
		return "", nil
	}
	url, err := s.Avatars.Upload(ctx, up.Filename, up.Body)
	switch {
	case errors.Is(err, asset.ErrUnsupportedType):
		return "", apperr.BadRequest("Avatar must be a png, jpg, gif or webp image")
	case errors.Is(err, asset.ErrTooLarge):
		return "", apperr.BadRequest("Avatar must be at most %d MB", asset.MaxAvatarBytes>>20)
	case err != nil:
		return "", apperr.Internal("Avatar upload failed", err)
	}
	return url, nil
}

// discardAvatar removes an uploaded avatar that no stored user points at.
// Failures are only logged.
func (s *UserService) discardAvatar(ctx context.Context, url string) {
	r, ok := s.Avatars.(AvatarRemover)
	if url == "" || !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	if err := r.Remove(ctx, url); err != nil {
		s.Log.Warnw("avatar cleanup failed", "url", url, "error", err)
	}
}

// Create registers a user.  The member number is allocated only after every
// validation has passed; if allocation fails nothing is written.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.UserView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.Required(
		validate.Text("name", in.Name),
		validate.Text("email", in.Email),
		validate.Text("password", in.Password),
		validate.ID("roleId", in.RoleID),
	); err != nil {
		return nil, err
	}
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validate.Password(in.Password); err != nil {
		return nil, err
	}
	taken, err := s.Users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict(msgEmailTaken)
	}
	role, err := s.Roles.GetByID(ctx, in.RoleID)
	if err != nil {
		return nil, notFoundOr(err, msgRoleNotFound)
	}
	hash, err := hashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	avatar, err := s.uploadAvatar(ctx, in.Avatar)
	if err != nil {
		return nil, err
	}
	karykarID, err := s.Sequence.Next(ctx, sequence.KarykarID)
	if err != nil {
		s.discardAvatar(ctx, avatar)
		return nil, apperr.Internal("Could not allocate karykarID", err)
	}

	u := &model.User{
		Name:         in.Name,
		Email:        email,
		Username:     validate.Username(in.Name, karykarID),
		KarykarID:    karykarID,
		Avatar:       avatar,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		s.discardAvatar(ctx, avatar)
		return nil, conflictOr(err, msgEmailTaken)
	}
	created, err := s.Users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while registering the user", err)
	}
	s.notifyRegistered(*created)

	v := created.View(role)
	return &v, nil
}

// notifyRegistered hands the new user to the notifier, without waiting
// unless NotifyInline is set.  Failures are only logged.
func (s *UserService) notifyRegistered(u model.User) {
	if s.Notifier == nil {
		return
	}
	notify := func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.NotifyRegistered(ctx, u); err != nil {
			s.Log.Warnw("registration notification failed", "user_id", u.ID, "error", err)
		}
	}
	if s.NotifyInline {
		notify()
		return
	}
	go notify()
}

// Get looks a user up by member number.
func (s *UserService) Get(ctx context.Context, karykarID int64) (*model.UserView, error) {
	u, err := s.Users.GetByKarykarID(ctx, karykarID)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}
	return s.view(ctx, u)
}

// Me returns the view of the authenticated user.
func (s *UserService) Me(ctx context.Context, id uint64) (*model.UserView, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}
	return s.view(ctx, u)
}

func (s *UserService) List(ctx context.Context) ([]model.UserView, error) {
	users, err := s.Users.List(ctx, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.views(ctx, users)
}

func (s *UserService) ListByRole(ctx context.Context, roleID uint64) ([]model.UserView, error) {
	if err := s.Required(validate.ID("roleId", roleID)); err != nil {
		return nil, err
	}
	if _, err := s.Roles.GetByID(ctx, roleID); err != nil {
		return nil, notFoundOr(err, msgRoleNotFound)
	}
	users, err := s.Users.List(ctx, roleID)
	if err != nil {
		return nil, storeErr(err)
	}
	return s.views(ctx, users)
}

// Update applies the supplied fields to the user with the given member
// number.  The password is re-hashed only when it differs from the stored
// one; the username never changes.
func (s *UserService) Update(ctx context.Context, karykarID int64, in UserUpdate) (*model.UserView, error) {
	if in.empty() {
		return nil, apperr.BadRequest("Nothing to update")
	}
	cur, err := s.Users.GetByKarykarID(ctx, karykarID)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound)
	}

	var c repository.UserChanges
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := s.Required(validate.Text("name", name)); err != nil {
			return nil, err
		}
		if name != cur.Name {
			c.Name = &name
		}
	}
	if in.Email != nil {
		email, err := validate.Email(*in.Email)
		if err != nil {
			return nil, err
		}
		if email != cur.Email {
			taken, err := s.Users.EmailTaken(ctx, email, cur.ID)
			if err != nil {
				return nil, storeErr(err)
			}
			if taken {
				return nil, apperr.Conflict(msgEmailTaken)
			}
			c.Email = &email
		}
	}
	if in.RoleID != nil && *in.RoleID != cur.RoleID {
		if _, err := s.Roles.GetByID(ctx, *in.RoleID); err != nil {
			return nil, notFoundOr(err, msgRoleNotFound)
		}
		c.RoleID = in.RoleID
	}
	if in.Password != nil && !utils.VerifyPassword(cur.PasswordHash, *in.Password) {
		if err := validate.Password(*in.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*in.Password, s.BcryptCost)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = &hash
	}
	if in.Avatar != nil {
		url, err := s.uploadAvatar(ctx, in.Avatar)
		if err != nil {
			return nil, err
		}
		if url != "" {
			c.Avatar = &url
		}
	}

	if err := s.Users.Update(ctx, cur.ID, c); err != nil {
		if c.Avatar != nil {
			s.discardAvatar(ctx, *c.Avatar)
		}
		return nil, conflictOr(err, msgEmailTaken)
	}
	return s.Me(ctx, cur.ID)
}

// Delete removes a user that no sabha references.
func (s *UserService) Delete(ctx context.Context, karykarID int64) error {
	cur, err := s.Users.GetByKarykarID(ctx, karykarID)
	if err != nil {
		return notFoundOr(err, msgUserNotFound)
	}
	n, err := s.Sabhas.CountReferencingUser(ctx, cur.ID)
	if err != nil {
		return storeErr(err)
	}
	if n > 0 {
		return apperr.Conflict("User is referenced by %d sabha(s)", n)
	}
	if err := s.Users.Delete(ctx, cur.ID); err != nil {
		return notFoundOr(err, msgUserNotFound)
	}
	return nil
}

func (s *UserService) view(ctx context.Context, u *model.User) (*model.UserView, error) {
	return userView(ctx, s.Roles, u)
}

func (s *UserService) views(ctx context.Context, users []model.User) ([]model.UserView, error) {
	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.RoleID)
	}
	roles, err := s.Roles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]model.UserView, 0, len(users))
	for _, u := range users {
		var role *model.Role
		if r, ok := roles[u.RoleID]; ok {
			role = &r
		}
		out = append(out, u.View(role))
	}
	return out, nil
}

// userView joins u with its role.  A dangling role renders as null.
func userView(ctx context.Context, roles RoleLookup, u *model.User) (*model.UserView, error) {
	role, err := roles.GetByID(ctx, u.RoleID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr(err)
	}
	v := u.View(role)
	return &v, nil
}
