// Package service holds the business rules that sit between the HTTP
// handlers and the repositories: required fields, uniqueness, referential
// checks, the credential lifecycle and the display joins.  Every rule that
// can fail does so before storage is mutated.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/repository"
)

// RoleStore is the persistence the role rules need.
type RoleStore interface {
	Create(ctx context.Context, name string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*model.Role, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	NameTaken(ctx context.Context, name string, excludeID uint64) (bool, error)
	UpdateName(ctx context.Context, id uint64, name string) error
	Delete(ctx context.Context, id uint64) error
}

type AreaStore interface {
	Create(ctx context.Context, name string, pincode int) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*model.Area, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Area, error)
	List(ctx context.Context) ([]model.Area, error)
	PairTaken(ctx context.Context, name string, pincode int, excludeID uint64) (bool, error)
	Update(ctx context.Context, id uint64, name string, pincode int) error
	Delete(ctx context.Context, id uint64) error
}

// PincodeStore is the read-only postal reference table.
type PincodeStore interface {
	ListByPincode(ctx context.Context, pincode int) ([]model.PostOffice, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByKarykarID(ctx context.Context, karykarID int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
	List(ctx context.Context, roleID uint64) ([]model.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error)
	CountByRole(ctx context.Context, roleID uint64) (int, error)
	Update(ctx context.Context, id uint64, c repository.UserChanges) error
	SetRefreshToken(ctx context.Context, id uint64, token *string) error
	Delete(ctx context.Context, id uint64) error
}

type SabhaStore interface {
	Create(ctx context.Context, s *model.Sabha) error
	GetByID(ctx context.Context, id uint64) (*model.Sabha, error)
	List(ctx context.Context) ([]*model.Sabha, error)
	PairTaken(ctx context.Context, name string, areaID, excludeID uint64) (bool, error)
	Update(ctx context.Context, s *model.Sabha) error
	Delete(ctx context.Context, id uint64) error
	CountByArea(ctx context.Context, areaID uint64) (int, error)
	CountReferencingUser(ctx context.Context, userID uint64) (int, error)
}

// AvatarUploader stores an uploaded image and returns the URL it is served from.
type AvatarUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
}

// AvatarRemover is implemented by uploaders that can take back a stored
// avatar.  Writes that fail after the upload use it to discard the file.
type AvatarRemover interface {
	Remove(ctx context.Context, url string) error
}

// RegistrationNotifier is told about every confirmed registration.  It is
// called off the request path and its failure is only logged.
type RegistrationNotifier interface {
	NotifyRegistered(ctx context.Context, u model.User) error
}

// Upload is an optional file supplied with a user write.
type Upload struct {
	Filename string
	Body     io.Reader
}

const somethingWentWrong = "Something went wrong"

// storeErr turns an unexpected repository failure into a 500.  Errors that
// already carry a status pass through unchanged.
func storeErr(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(somethingWentWrong, err)
}

// notFoundOr maps repository.ErrNotFound to a 404 with msg and anything
// else to a 500.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return storeErr(err)
}

// conflictOr maps repository.ErrDuplicate to a 409 with msg.
func conflictOr(err error, msg string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("%s", msg)
	}
	return storeErr(err)
}
