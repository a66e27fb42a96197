package model

import "time"

// Role is a permission label referenced by users.
type Role struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleRef is the projection of a role embedded in a UserView.
type RoleRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func (r Role) Ref() RoleRef { return RoleRef{ID: r.ID, Name: r.Name} }
