package model

import "time"

// Sabha is a meeting unit in one Area, led by a sanchalak, inspected by a
// nirikshak and assisted by zero or more sah-sanchalaks.  SahSanchalakIDs
// keeps the order in which they were supplied.
type Sabha struct {
	ID              uint64
	Name            string
	AreaID          uint64
	SanchalakID     uint64
	NirikshakID     uint64
	SahSanchalakIDs []uint64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SabhaView is the display shape of a sabha: every foreign key replaced by a
// shallow projection of the referenced record.  A nil reference means the
// target has disappeared since the sabha was written.
type SabhaView struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Area         *AreaRef  `json:"areaDetails"`
	Sanchalak    *UserRef  `json:"sanchalak"`
	Nirikshak    *UserRef  `json:"nirikshak"`
	SahSanchalak []UserRef `json:"sahSanchalak"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserIDs lists every user the sabha references, leaders first.
func (s Sabha) UserIDs() []uint64 {
	ids := make([]uint64, 0, 2+len(s.SahSanchalakIDs))
	ids = append(ids, s.SanchalakID, s.NirikshakID)
	return append(ids, s.SahSanchalakIDs...)
}
