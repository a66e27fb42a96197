package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/sabha-admin/internal/apperr"
	"github.com/iliyamo/sabha-admin/internal/model"
	"github.com/iliyamo/sabha-admin/internal/repository"
	"github.com/iliyamo/sabha-admin/internal/utils"
	"github.com/iliyamo/sabha-admin/internal/validate"
)

const msgInvalidCredentials = "Invalid username or password"

// CredentialStore is the slice of user persistence the session lifecycle uses.
type CredentialStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id uint64, token *string) error
	Update(ctx context.Context, id uint64, c repository.UserChanges) error
}

// TokenConfig holds the signing secrets and lifetimes of session tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
}

// Session is what a successful login or refresh hands back.
type Session struct {
	User   model.UserView
	Tokens utils.TokenPair
}

type AuthService struct {
	users    CredentialStore
	roles    RoleLookup
	cfg      TokenConfig
	required validate.RequiredFunc
}

func NewAuthService(users CredentialStore, roles RoleLookup, cfg TokenConfig, required validate.RequiredFunc) *AuthService {
	return &AuthService{users: users, roles: roles, cfg: cfg, required: required}
}

// Login verifies a username and password and opens a new session, which
// replaces any refresh token issued before.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := s.required(validate.Text("username", username), validate.Text("password", password)); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	return s.issue(ctx, u)
}

// Refresh rotates a session.  The presented token must match the one stored
// on the user; a token that has already been rotated out is rejected.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperr.Unauthorized("Refresh token is required")
	}
	id, err := utils.ParseRefreshToken(s.cfg.RefreshSecret, raw)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if u.RefreshToken == nil || *u.RefreshToken != raw {
		return nil, apperr.Unauthorized("Refresh token is expired or used")
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.AccessSecret, utils.AccessClaims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	}, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperr.Internal(somethingWentWrong, err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshSecret, u.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperr.Internal(somethingWentWrong, err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, &refresh.Token); err != nil {
		return nil, storeErr(err)
	}
	view, err := userView(ctx, s.roles, u)
	if err != nil {
		return nil, err
	}
	return &Session{User: *view, Tokens: utils.TokenPair{Access: access, Refresh: refresh}}, nil
}

// Logout clears the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return storeErr(err)
	}
	return nil
}

// Authenticate resolves an access token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, apperr.Unauthorized("Unauthorized request")
	}
	claims, err := utils.ParseAccessToken(s.cfg.AccessSecret, raw)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid access token")
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid access token")
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return u, nil
}

// ChangePasswordInput is the body of a password change.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the user's hash once the old password verifies,
// the confirmation matches and the new password differs from the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, in ChangePasswordInput) error {
	if err := s.required(
		validate.Text("oldPassword", in.OldPassword),
		validate.Text("newPassword", in.NewPassword),
		validate.Text("confirmPassword", in.ConfirmPassword),
	); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, msgUserNotFound)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.OldPassword) {
		return apperr.BadRequest("Invalid old password")
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperr.BadRequest("New password and confirm password do not match")
	}
	if utils.VerifyPassword(u.PasswordHash, in.NewPassword) {
		return apperr.BadRequest("New password must be different from the old password")
	}
	if err := validate.Password(in.NewPassword); err != nil {
		return err
	}
	hash, err := hashPassword(in.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, userID, repository.UserChanges{PasswordHash: &hash}); err != nil {
		return storeErr(err)
	}
	return nil
}
