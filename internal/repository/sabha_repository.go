package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/sabha-admin/internal/model"
)

const sabhaColumns = "id, name, area_id, sanchalak_id, nirikshak_id, created_at, updated_at"

// SabhaRepo persists sabhas.  Sah-sanchalaks live in sabha_sah_sanchalaks
// with their position so the supplied order survives a round trip.
type SabhaRepo struct {
	db *sql.DB
}

func NewSabhaRepo(db *sql.DB) *SabhaRepo { return &SabhaRepo{db: db} }

func scanSabha(s rowScanner) (*model.Sabha, error) {
	var sb model.Sabha
	if err := s.Scan(&sb.ID, &sb.Name, &sb.AreaID, &sb.SanchalakID, &sb.NirikshakID,
		&sb.CreatedAt, &sb.UpdatedAt); err != nil {
		return nil, err
	}
	sb.SahSanchalakIDs = []uint64{}
	return &sb, nil
}

// Create inserts the sabha row and its sah-sanchalak rows in one
// transaction and fills in s.ID.
func (r *SabhaRepo) Create(ctx context.Context, s *model.Sabha) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO sabhas (name, area_id, sanchalak_id, nirikshak_id) VALUES (?, ?, ?, ?)",
		s.Name, s.AreaID, s.SanchalakID, s.NirikshakID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err = insertSahSanchalaks(ctx, tx, uint64(id), s.SahSanchalakIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func insertSahSanchalaks(ctx context.Context, tx *sql.Tx, sabhaID uint64, userIDs []uint64) error {
	userIDs = uniqueIDs(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	b := sq.Insert("sabha_sah_sanchalaks").Columns("sabha_id", "user_id", "position")
	for i, uid := range userIDs {
		b = b.Values(sabhaID, uid, i)
	}
	_, err := execBuilt(ctx, tx, b)
	return err
}

// attachSahSanchalaks fills SahSanchalakIDs for every sabha in byID.
func (r *SabhaRepo) attachSahSanchalaks(ctx context.Context, byID map[uint64]*model.Sabha) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	rows, err := queryBuilt(ctx, r.db, sq.Select("sabha_id", "user_id").
		From("sabha_sah_sanchalaks").
		Where(sq.Eq{"sabha_id": ids}).
		OrderBy("sabha_id", "position"))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sabhaID, userID uint64
		if err := rows.Scan(&sabhaID, &userID); err != nil {
			return err
		}
		if s, ok := byID[sabhaID]; ok {
			s.SahSanchalakIDs = append(s.SahSanchalakIDs, userID)
		}
	}
	return rows.Err()
}

func (r *SabhaRepo) GetByID(ctx context.Context, id uint64) (*model.Sabha, error) {
	s, err := scanSabha(r.db.QueryRowContext(ctx,
		"SELECT "+sabhaColumns+" FROM sabhas WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachSahSanchalaks(ctx, map[uint64]*model.Sabha{s.ID: s}); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all sabhas ordered by id, each with its sah-sanchalaks.
func (r *SabhaRepo) List(ctx context.Context) ([]*model.Sabha, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+sabhaColumns+" FROM sabhas ORDER BY id")
	if err != nil {
		return nil, err
	}
	out := []*model.Sabha{}
	byID := map[uint64]*model.Sabha{}
	for rows.Next() {
		s, err := scanSabha(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
		byID[s.ID] = s
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := r.attachSahSanchalaks(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

// PairTaken reports whether another sabha already has this (name, areaID).
func (r *SabhaRepo) PairTaken(ctx context.Context, name string, areaID, excludeID uint64) (bool, error) {
	return exists(ctx, r.db, sq.Select().From("sabhas").
		Where(sq.Eq{"area_id": areaID, "name": name}).
		Where(sq.NotEq{"id": excludeID}))
}

// Update rewrites the sabha row and replaces its sah-sanchalak rows.
func (r *SabhaRepo) Update(ctx context.Context, s *model.Sabha) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`UPDATE sabhas SET name = ?, area_id = ?, sanchalak_id = ?, nirikshak_id = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		s.Name, s.AreaID, s.SanchalakID, s.NirikshakID, s.ID); err != nil {
		return translate(err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM sabha_sah_sanchalaks WHERE sabha_id = ?", s.ID); err != nil {
		return err
	}
	if err = insertSahSanchalaks(ctx, tx, s.ID, s.SahSanchalakIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the sabha and its sah-sanchalak rows.
func (r *SabhaRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM sabha_sah_sanchalaks WHERE sabha_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM sabhas WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	return tx.Commit()
}

// CountByArea counts sabhas located in areaID.
func (r *SabhaRepo) CountByArea(ctx context.Context, areaID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sabhas WHERE area_id = ?", areaID).Scan(&n)
	return n, err
}

// CountReferencingUser counts sabhas naming userID in any leadership slot.
func (r *SabhaRepo) CountReferencingUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sabhas s
		 WHERE s.sanchalak_id = ? OR s.nirikshak_id = ?
		    OR EXISTS (SELECT 1 FROM sabha_sah_sanchalaks x WHERE x.sabha_id = s.id AND x.user_id = ?)`,
		userID, userID, userID).Scan(&n)
	return n, err
}
