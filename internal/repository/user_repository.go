package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/sabha-admin/internal/model"
)

const userColumns = "id, name, email, username, karykar_id, avatar, password_hash, role_id, refresh_token, created_at, updated_at"

// UserRepo persists accounts, including the credential fields.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u       model.User
		refresh sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.KarykarID, &u.Avatar,
		&u.PasswordHash, &u.RoleID, &refresh, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if refresh.Valid {
		u.RefreshToken = &refresh.String
	}
	return &u, nil
}

// Create inserts u and fills in its ID.  ErrDuplicate means the email,
// username or member number is already in use.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, username, karykar_id, avatar, password_hash, role_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Username, u.KarykarID, u.Avatar, u.PasswordHash, u.RoleID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepo) GetByKarykarID(ctx context.Context, karykarID int64) (*model.User, error) {
	return r.getOne(ctx, "karykar_id = ?", karykarID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := map[uint64]model.User{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := queryBuilt(ctx, r.db, sq.Select(userColumns).From("users").Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = *u
	}
	return out, rows.Err()
}

// List returns users ordered by member number; roleID > 0 narrows the list
// to that role.
func (r *UserRepo) List(ctx context.Context, roleID uint64) ([]model.User, error) {
	b := sq.Select(userColumns).From("users").OrderBy("karykar_id")
	if roleID > 0 {
		b = b.Where(sq.Eq{"role_id": roleID})
	}
	rows, err := queryBuilt(ctx, r.db, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	return exists(ctx, r.db, sq.Select().From("users").
		Where(sq.Eq{"email": email}).
		Where(sq.NotEq{"id": excludeID}))
}

// CountByRole counts users holding roleID.
func (r *UserRepo) CountByRole(ctx context.Context, roleID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role_id = ?", roleID).Scan(&n)
	return n, err
}

// UserChanges lists the columns an update touches; nil means unchanged.
type UserChanges struct {
	Name         *string
	Email        *string
	Avatar       *string
	PasswordHash *string
	RoleID       *uint64
}

func (c UserChanges) empty() bool {
	return c.Name == nil && c.Email == nil && c.Avatar == nil && c.PasswordHash == nil && c.RoleID == nil
}

// Update writes only the columns set in c.
func (r *UserRepo) Update(ctx context.Context, id uint64, c UserChanges) error {
	if c.empty() {
		return nil
	}
	b := sq.Update("users").Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).Where(sq.Eq{"id": id})
	if c.Name != nil {
		b = b.Set("name", *c.Name)
	}
	if c.Email != nil {
		b = b.Set("email", *c.Email)
	}
	if c.Avatar != nil {
		b = b.Set("avatar", *c.Avatar)
	}
	if c.PasswordHash != nil {
		b = b.Set("password_hash", *c.PasswordHash)
	}
	if c.RoleID != nil {
		b = b.Set("role_id", *c.RoleID)
	}
	_, err := execBuilt(ctx, r.db, b)
	return err
}

// SetRefreshToken stores the single active refresh token for a user,
// replacing any previous one.  A nil token clears the session.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, token *string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET refresh_token = ? WHERE id = ?", token, id)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
