package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/sabha-admin/internal/model"
)

// PincodeRepo reads the postal reference table.  The application never
// writes to it except through the bulk import command.
type PincodeRepo struct {
	db *sql.DB
}

func NewPincodeRepo(db *sql.DB) *PincodeRepo { return &PincodeRepo{db: db} }

// ListByPincode returns every post office registered under pincode.
func (r *PincodeRepo) ListByPincode(ctx context.Context, pincode int) ([]model.PostOffice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, officename, pincode, officetype, district, statename, latitude, longitude
		 FROM pincodes WHERE pincode = ? ORDER BY officename`, pincode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PostOffice{}
	for rows.Next() {
		var (
			p        model.PostOffice
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.OfficeName, &p.Pincode, &p.OfficeType,
			&p.District, &p.StateName, &lat, &lng); err != nil {
			return nil, err
		}
		if lat.Valid {
			p.Latitude = &lat.Float64
		}
		if lng.Valid {
			p.Longitude = &lng.Float64
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertBatch writes offices in one multi-row INSERT and returns the number
// of rows written.
func (r *PincodeRepo) InsertBatch(ctx context.Context, offices []model.PostOffice) (int64, error) {
	if len(offices) == 0 {
		return 0, nil
	}
	b := sq.Insert("pincodes").
		Columns("officename", "pincode", "officetype", "district", "statename", "latitude", "longitude")
	for _, p := range offices {
		b = b.Values(p.OfficeName, p.Pincode, p.OfficeType, p.District, p.StateName, p.Latitude, p.Longitude)
	}
	res, err := execBuilt(ctx, r.db, b)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
