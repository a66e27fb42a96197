package model

// PostOffice is one row of the read-only postal reference table.
type PostOffice struct {
	ID         uint64   `json:"id"`
	OfficeName string   `json:"officename"`
	Pincode    int      `json:"pincode"`
	OfficeType string   `json:"officetype"`
	District   string   `json:"district"`
	StateName  string   `json:"statename"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}
