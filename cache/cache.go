// Package cache persists fingerprints in a local SQLite database so later runs
// and other tools can query them.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riadafridishibly/imgdedup/engine"
	_ "modernc.org/sqlite"
)

type Record struct {
	Path     string
	Hash     string
	Metadata engine.Metadata
	RunID    string
	HashedAt time.Time
}

type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is open
	Stored     int
}

// Store is an engine.ResultSink over SQLite. Each Store records one run; open
// a new Store per ProcessDirectory call.
type Store struct {
	db    *sql.DB
	runID string

	mu        sync.Mutex
	stored    int
	finalized bool
}

const schema = `
CREATE TABLE IF NOT EXISTS hashes (
    path TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    file_size INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    was_resized INTEGER NOT NULL,
    processing_time_ms INTEGER NOT NULL,
    run_id TEXT NOT NULL,
    hashed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS hashes_hash ON hashes (hash);
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    finished_at INTEGER,
    stored INTEGER NOT NULL DEFAULT 0
);
`

var ErrFinalized = errors.New("run already finalized")

// Open opens (creating if needed) the database at dbPath and starts a run
// for root.
func Open(dbPath, root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	db.Exec(`PRAGMA journal_mode=WAL;`)
	db.Exec(`PRAGMA synchronous=NORMAL;`)
	db.Exec(`PRAGMA busy_timeout=5000;`)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &Store{db: db, runID: uuid.NewString()}
	_, err = db.Exec(`INSERT INTO runs (id, root, started_at) VALUES (?, ?, ?)`, s.runID, root, time.Now().Unix())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return s, nil
}

// DefaultPath is ~/.cache/imgdedup/hashes.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "imgdedup", "hashes.db"), nil
}

func (s *Store) RunID() string {
	return s.runID
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) StoreOne(ctx context.Context, path, hash string, meta engine.Metadata) error {
	return s.StoreBatch(ctx, []engine.Entry{{Path: path, Hash: hash, Metadata: meta}})
}

const upsert = `
    INSERT INTO hashes (path, hash, file_size, width, height, was_resized, processing_time_ms, run_id, hashed_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(path) DO UPDATE SET
        hash = excluded.hash,
        file_size = excluded.file_size,
        width = excluded.width,
        height = excluded.height,
        was_resized = excluded.was_resized,
        processing_time_ms = excluded.processing_time_ms,
        run_id = excluded.run_id,
        hashed_at = excluded.hashed_at
`

// StoreBatch writes the whole batch in one transaction.
func (s *Store) StoreBatch(ctx context.Context, entries []engine.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, e := range entries {
		m := e.Metadata
		_, err := stmt.ExecContext(ctx, e.Path, e.Hash, int64(m.FileSize), int64(m.Width), int64(m.Height), m.WasResized,
			int64(m.ProcessingTimeMs), s.runID, now)
		if err != nil {
			return fmt.Errorf("store %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.stored += len(entries)
	return nil
}

// Finalize closes the run.
func (s *Store) Finalize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true

	_, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, stored = ? WHERE id = ?`,
		time.Now().Unix(), s.stored, s.runID)
	return err
}

func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT path, hash, file_size, width, height, was_resized, processing_time_ms, run_id, hashed_at
        FROM hashes WHERE path = ?`, path)
	return scanRecord(row)
}

// All returns every stored record ordered by path.
func (s *Store) All(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT path, hash, file_size, width, height, was_resized, processing_time_ms, run_id, hashed_at
        FROM hashes ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM hashes WHERE path = ?", path)
	return err
}

func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	var (
		r        Run
		started  int64
		finished sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, root, started_at, finished_at, stored FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Root, &started, &finished, &r.Stored)
	if err != nil {
		return nil, err
	}
	r.StartedAt = time.Unix(started, 0)
	if finished.Valid {
		r.FinishedAt = time.Unix(finished.Int64, 0)
	}
	return &r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		r             Record
		size, elapsed int64
		hashedAt      int64
	)
	err := row.Scan(&r.Path, &r.Hash, &size, &r.Metadata.Width, &r.Metadata.Height, &r.Metadata.WasResized,
		&elapsed, &r.RunID, &hashedAt)
	if err != nil {
		return nil, err
	}
	r.Metadata.FileSize = uint64(size)
	r.Metadata.ProcessingTimeMs = uint64(elapsed)
	r.HashedAt = time.Unix(hashedAt, 0)
	return &r, nil
}
