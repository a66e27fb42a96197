package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/sabha-admin/internal/model"
)

const areaColumns = "id, name, pincode, created_at, updated_at"

// AreaRepo encapsulates all database queries related to areas.
type AreaRepo struct {
	db *sql.DB
}

func NewAreaRepo(db *sql.DB) *AreaRepo { return &AreaRepo{db: db} }

func scanArea(s rowScanner) (*model.Area, error) {
	var a model.Area
	if err := s.Scan(&a.ID, &a.Name, &a.Pincode, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AreaRepo) Create(ctx context.Context, name string, pincode int) (uint64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO areas (name, pincode) VALUES (?, ?)", name, pincode)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *AreaRepo) GetByID(ctx context.Context, id uint64) (*model.Area, error) {
	a, err := scanArea(r.db.QueryRowContext(ctx,
		"SELECT "+areaColumns+" FROM areas WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *AreaRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Area, error) {
	out := map[uint64]model.Area{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := queryBuilt(ctx, r.db, sq.Select(areaColumns).From("areas").Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = *a
	}
	return out, rows.Err()
}

func (r *AreaRepo) List(ctx context.Context) ([]model.Area, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+areaColumns+" FROM areas ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Area{}
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// PairTaken reports whether another area already has this (name, pincode).
func (r *AreaRepo) PairTaken(ctx context.Context, name string, pincode int, excludeID uint64) (bool, error) {
	return exists(ctx, r.db, sq.Select().From("areas").
		Where(sq.Eq{"name": name, "pincode": pincode}).
		Where(sq.NotEq{"id": excludeID}))
}

func (r *AreaRepo) Update(ctx context.Context, id uint64, name string, pincode int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE areas SET name = ?, pincode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, pincode, id)
	return translate(err)
}

func (r *AreaRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM areas WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
