package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/sabha-admin/internal/model"
)

const roleColumns = "id, name, created_at, updated_at"

// RoleRepo encapsulates all database queries related to roles.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

func scanRole(s rowScanner) (*model.Role, error) {
	var r model.Role
	if err := s.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a role and returns its id.  ErrDuplicate signals that the
// name is taken.
func (r *RoleRepo) Create(ctx context.Context, name string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", name)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (*model.Role, error) {
	role, err := scanRole(r.db.QueryRowContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return role, err
}

// GetByIDs loads every role in ids; absent ids are simply missing from the map.
func (r *RoleRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Role, error) {
	out := map[uint64]model.Role{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := queryBuilt(ctx, r.db, sq.Select(roleColumns).From("roles").Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out[role.ID] = *role
	}
	return out, rows.Err()
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roleColumns+" FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

// NameTaken reports whether another role (id != excludeID) already uses name.
func (r *RoleRepo) NameTaken(ctx context.Context, name string, excludeID uint64) (bool, error) {
	return exists(ctx, r.db, sq.Select().From("roles").
		Where(sq.Eq{"name": name}).
		Where(sq.NotEq{"id": excludeID}))
}

func (r *RoleRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE roles SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", name, id)
	return translate(err)
}

// Delete removes a role; ErrNotFound when no row matched.
func (r *RoleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
