// Package sequence issues monotonically increasing integers per named
// sequence.  Each call to Next returns a value strictly greater than every
// earlier value for the same name, also under concurrent callers.
package sequence

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// KarykarID is the sequence backing member numbers.
const KarykarID = "karykarID"

// Allocator hands out the next value of a named sequence.
type Allocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// MySQL allocates from the counters table with a single upsert statement.
// LAST_INSERT_ID(expr) makes the new value come back in the statement's
// OK packet, so the increment and the read are one atomic operation and no
// transaction is needed.  The first call for a name creates the row at 1.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

const nextSQL = "INSERT INTO counters (name, seq) VALUES (?, LAST_INSERT_ID(1)) " +
	"ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)"

// ErrNoValue is returned when the database reports no allocated value.
var ErrNoValue = errors.New("sequence: no value allocated")

func (m *MySQL) Next(ctx context.Context, name string) (int64, error) {
	res, err := m.db.ExecContext(ctx, nextSQL, name)
	if err != nil {
		return 0, err
	}
	v, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ErrNoValue
	}
	return v, nil
}

// Memory is a process-local allocator for tests and single-node tooling.
type Memory struct {
	mu   sync.Mutex
	last map[string]int64
}

func NewMemory() *Memory { return &Memory{last: map[string]int64{}} }

func (m *Memory) Next(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[name]++
	return m.last[name], nil
}
