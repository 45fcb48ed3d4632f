package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/EchoCog/atomspace/core/atomspace"
)

// SQL is a Backend over database/sql, driven by mattn/go-sqlite3.
// Connection pooling is whatever database/sql's own pool provides;
// SetMaxOpenConns/SetMaxIdleConns are configured from PoolSize at Open
// time (spec §6 "pool_size").
type SQL struct {
	dsn       string
	poolSize  int
	db        *sql.DB
}

// NewSQL constructs a SQL backend against dsn (e.g. "file:atoms.db"),
// sized to poolSize concurrent connections.
func NewSQL(dsn string, poolSize int) *SQL {
	if poolSize <= 0 {
		poolSize = 10
	}
	return &SQL{dsn: dsn, poolSize: poolSize}
}

const schema = `
CREATE TABLE IF NOT EXISTS atoms (
	handle     TEXT PRIMARY KEY,
	type       INTEGER NOT NULL,
	name       TEXT NOT NULL,
	is_link    INTEGER NOT NULL,
	outgoing   TEXT NOT NULL,
	strength   REAL NOT NULL,
	confidence REAL NOT NULL,
	sti        INTEGER NOT NULL,
	lti        INTEGER NOT NULL,
	vlti       INTEGER NOT NULL
);
`

// Open implements Backend: connects and migrates the schema.
func (s *SQL) Open(ctx context.Context) error {
	db, err := sql.Open("sqlite3", s.dsn)
	if err != nil {
		return fmt.Errorf("sql backend open %q: %w: %v", s.dsn, atomspace.ErrBackendUnavailable, err)
	}
	db.SetMaxOpenConns(s.poolSize)
	db.SetMaxIdleConns(s.poolSize)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sql backend ping: %w: %v", atomspace.ErrBackendUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sql backend migrate: %w: %v", atomspace.ErrBackendUnavailable, err)
	}
	s.db = db
	return nil
}

// Close implements Backend.
func (s *SQL) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const upsertSQL = `
INSERT INTO atoms (handle, type, name, is_link, outgoing, strength, confidence, sti, lti, vlti)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(handle) DO UPDATE SET
	type=excluded.type, name=excluded.name, is_link=excluded.is_link, outgoing=excluded.outgoing,
	strength=excluded.strength, confidence=excluded.confidence,
	sti=excluded.sti, lti=excluded.lti, vlti=excluded.vlti;
`

// StoreAtom implements Backend.
func (s *SQL) StoreAtom(ctx context.Context, r Record) error {
	return s.storeOne(ctx, s.db, r)
}

func (s *SQL) storeOne(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, r Record) error {
	outgoing, err := json.Marshal(r.Outgoing)
	if err != nil {
		return fmt.Errorf("encode outgoing for %s: %w: %v", r.Handle, atomspace.ErrSerializationFailed, err)
	}
	_, err = execer.ExecContext(ctx, upsertSQL, string(r.Handle), uint32(r.Type), r.Name, boolToInt(r.IsLink), string(outgoing),
		r.Strength, r.Confidence, r.STI, r.LTI, boolToInt(r.VLTI))
	if err != nil {
		return fmt.Errorf("store atom %s: %w", r.Handle, err)
	}
	return nil
}

// StoreAtoms implements Backend as a single transaction, matching the
// teacher's state_manager batch-write pattern: all-or-nothing commit.
func (s *SQL) StoreAtoms(ctx context.Context, rs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store atoms: begin tx: %w", err)
	}
	for _, r := range rs {
		if err := s.storeOne(ctx, tx, r); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store atoms: commit: %w", err)
	}
	return nil
}

const selectBase = `SELECT handle, type, name, is_link, outgoing, strength, confidence, sti, lti, vlti FROM atoms WHERE handle = ?`

// FetchAtom implements Backend.
func (s *SQL) FetchAtom(ctx context.Context, h atomspace.Handle) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, selectBase, string(h))
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("fetch atom %s: %w", h, err)
	}
	return r, true, nil
}

// FetchAtoms implements Backend with one query per handle; the
// in-memory and kv backends optimize this differently, but sqlite's
// local access makes the round trip cheap in practice. The result has
// one entry per input handle, nil where no record exists, so callers
// can align results to hs by index.
func (s *SQL) FetchAtoms(ctx context.Context, hs []atomspace.Handle) ([]*Record, error) {
	out := make([]*Record, len(hs))
	for i, h := range hs {
		r, ok, err := s.FetchAtom(ctx, h)
		if err != nil {
			return nil, err
		}
		if ok {
			rCopy := r
			out[i] = &rCopy
		}
	}
	return out, nil
}

// RemoveAtom implements Backend.
func (s *SQL) RemoveAtom(ctx context.Context, h atomspace.Handle) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM atoms WHERE handle = ?`, string(h))
	if err != nil {
		return fmt.Errorf("remove atom %s: %w", h, err)
	}
	return nil
}

// IterateAtoms implements Backend.
func (s *SQL) IterateAtoms(ctx context.Context, fn func(Record) bool) error {
	rows, err := s.db.QueryContext(ctx, `SELECT handle, type, name, is_link, outgoing, strength, confidence, sti, lti, vlti FROM atoms`)
	if err != nil {
		return fmt.Errorf("iterate atoms: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return fmt.Errorf("iterate atoms: scan: %w", err)
		}
		if !fn(r) {
			break
		}
	}
	return rows.Err()
}

// Stats implements Backend.
func (s *SQL) Stats(ctx context.Context) (Stats, error) {
	st := Stats{BackendTag: "sql"}
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(is_link) FROM atoms`)
	var linkCount sql.NullInt64
	if err := row.Scan(&st.AtomCount, &linkCount); err != nil {
		return Stats{}, fmt.Errorf("sql stats: %w", err)
	}
	st.LinkCount = linkCount.Int64
	st.NodeCount = st.AtomCount - st.LinkCount
	return st, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var (
		handle, name, outgoingJSON string
		typ                        uint32
		r                          Record
		isLink, vlti               int
	)
	if err := row.Scan(&handle, &typ, &name, &isLink, &outgoingJSON, &r.Strength, &r.Confidence, &r.STI, &r.LTI, &vlti); err != nil {
		return Record{}, err
	}
	r.Handle = atomspace.Handle(handle)
	r.Type = atomspace.AtomType(typ)
	r.Name = name
	r.IsLink = isLink != 0
	r.VLTI = vlti != 0
	var outgoing []atomspace.Handle
	if err := json.Unmarshal([]byte(outgoingJSON), &outgoing); err != nil {
		return Record{}, fmt.Errorf("%w: %v", atomspace.ErrSerializationFailed, err)
	}
	r.Outgoing = outgoing
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
