// Package querycache is the QueryCache external collaborator (spec.md
// §1's "a persistent query cache" out-of-scope boundary): a store
// keyed by fully-qualified function path that remembers whether the
// last check of that function was safe, so a repeat run only re-invokes
// the solver for functions whose checked body actually changed (spec.md
// §6's incremental-checking scenario).
//
// Grounded on the domain-stack wiring decision in SPEC_FULL.md: an
// in-memory implementation for tests plus a modernc.org/sqlite-backed
// one for the CLI driver, with github.com/google/uuid minting a task id
// per cache entry so a crashed solver run can be correlated back to it
// in logs.
package querycache

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one cached verdict for a function (spec.md §6).
type Entry struct {
	TaskID    uuid.UUID
	FnPath    string
	BodyHash  string
	Safe      bool
	CheckedAt time.Time
}

// Cache is the interface internal/checker's driver depends on instead of
// a concrete storage engine.
type Cache interface {
	Get(ctx context.Context, fnPath, bodyHash string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Close() error
}

// Memory is an in-memory Cache, the default for tests and one-shot CLI
// invocations with no `--cache` flag.
type Memory struct {
	entries map[string]Entry
}

func NewMemory() *Memory { return &Memory{entries: map[string]Entry{}} }

func (m *Memory) Get(_ context.Context, fnPath, bodyHash string) (Entry, bool, error) {
	e, ok := m.entries[fnPath]
	if !ok || e.BodyHash != bodyHash {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (m *Memory) Put(_ context.Context, entry Entry) error {
	if entry.TaskID == uuid.Nil {
		entry.TaskID = uuid.New()
	}
	m.entries[entry.FnPath] = entry
	return nil
}

func (m *Memory) Close() error { return nil }

// SQLite is a Cache backed by a single-file SQLite database (spec.md §6
// "persist across invocations").
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a SQLite-backed cache at
// path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS query_cache (
	task_id    TEXT PRIMARY KEY,
	fn_path    TEXT NOT NULL,
	body_hash  TEXT NOT NULL,
	safe       INTEGER NOT NULL,
	checked_at INTEGER NOT NULL,
	UNIQUE(fn_path)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, fnPath, bodyHash string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT task_id, body_hash, safe, checked_at FROM query_cache WHERE fn_path = ?`, fnPath)
	var taskID string
	var storedHash string
	var safeInt int
	var checkedAt int64
	if err := row.Scan(&taskID, &storedHash, &safeInt, &checkedAt); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	if storedHash != bodyHash {
		return Entry{}, false, nil
	}
	id, err := uuid.Parse(taskID)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{
		TaskID:    id,
		FnPath:    fnPath,
		BodyHash:  storedHash,
		Safe:      safeInt != 0,
		CheckedAt: time.Unix(checkedAt, 0),
	}, true, nil
}

func (s *SQLite) Put(ctx context.Context, entry Entry) error {
	if entry.TaskID == uuid.Nil {
		entry.TaskID = uuid.New()
	}
	if entry.CheckedAt.IsZero() {
		entry.CheckedAt = time.Unix(0, 0)
	}
	safeInt := 0
	if entry.Safe {
		safeInt = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_cache (task_id, fn_path, body_hash, safe, checked_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(fn_path) DO UPDATE SET task_id = excluded.task_id, body_hash = excluded.body_hash,
		 safe = excluded.safe, checked_at = excluded.checked_at`,
		entry.TaskID.String(), entry.FnPath, entry.BodyHash, safeInt, entry.CheckedAt.Unix())
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }
