package model

import "time"

// Area is a named zone identified by its post-office name and pincode.
// The (Name, Pincode) pair is unique.
type Area struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Pincode   int       `json:"pincode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AreaRef is the projection of an area embedded in a SabhaView.
type AreaRef struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Pincode int    `json:"pincode"`
}

func (a Area) Ref() AreaRef { return AreaRef{ID: a.ID, Name: a.Name, Pincode: a.Pincode} }
