package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryBuilt runs a squirrel SELECT against db.
func queryBuilt(ctx context.Context, db *sql.DB, b sq.SelectBuilder) (*sql.Rows, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, q, args...)
}

// execBuilt runs any squirrel write statement against db.
func execBuilt(ctx context.Context, db interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, b sq.Sqlizer) (sql.Result, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	res, err := db.ExecContext(ctx, q, args...)
	return res, translate(err)
}

// exists runs a SELECT 1 ... LIMIT 1 and reports whether a row came back.
func exists(ctx context.Context, db *sql.DB, b sq.SelectBuilder) (bool, error) {
	q, args, err := b.Columns("1").Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	switch err := db.QueryRowContext(ctx, q, args...).Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, err
	}
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
