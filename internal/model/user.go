package model

import (
	"fmt"
	"time"
)

// User represents an account row in the `users` table.  PasswordHash and
// RefreshToken never leave the service layer; handlers render UserView.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	KarykarID    – sequential member number, displayed zero-padded.
//	Username     – derived at creation from Name and KarykarID.
//	RefreshToken – the single active refresh token (nil after logout).
type User struct {
	ID           uint64
	Name         string
	Email        string
	Username     string
	KarykarID    int64
	Avatar       string
	PasswordHash string
	RoleID       uint64
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FormatKarykarID renders a member number the way it is shown to people:
// zero-padded to at least four digits.
func FormatKarykarID(n int64) string {
	return fmt.Sprintf("%04d", n)
}

// UserRef is the shallow projection of a user embedded in other views.
type UserRef struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	KarykarID string `json:"karykarID"`
	Username  string `json:"username"`
}

// UserView is the display shape of a user, joined with its role.
type UserView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	KarykarID string    `json:"karykarID"`
	Avatar    string    `json:"avatar"`
	Role      *RoleRef  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ref projects u down to the fields other views display.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, KarykarID: FormatKarykarID(u.KarykarID), Username: u.Username}
}

// View builds the display shape; role may be nil when the referenced role
// no longer exists.
func (u User) View(role *Role) UserView {
	v := UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Username:  u.Username,
		KarykarID: FormatKarykarID(u.KarykarID),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if role != nil {
		ref := role.Ref()
		v.Role = &ref
	}
	return v
}
