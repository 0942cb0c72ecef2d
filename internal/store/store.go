// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists generation checkpoints in SQLite so interrupted
// runs can resume. The JSON payload column is authoritative; stage and
// level-count columns exist for listings only.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// ErrNotFound is returned when a run has no stored checkpoints.
var ErrNotFound = errors.New("checkpoint not found")

// Store manages the checkpoint SQLite database.
type Store struct {
	db *sql.DB
}

// Record summarizes one stored checkpoint for listings.
type Record struct {
	ID        int64
	RunID     string
	Stage     types.Stage
	Levels    int
	CreatedAt time.Time
}

// Open opens or creates the checkpoint database at path, creating the
// schema and any missing parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			levels INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkpoints_run_id ON checkpoints(run_id, id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save appends a checkpoint for the run. Checkpoints are never overwritten;
// Latest returns the most recent one.
func (s *Store) Save(ctx context.Context, runID string, cp *types.Checkpoint) error {
	if runID == "" {
		return fmt.Errorf("run id is empty")
	}
	if cp == nil {
		return fmt.Errorf("checkpoint is nil")
	}

	stored := cp.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (run_id, stage, levels, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, string(stored.Stage), len(stored.AnnotatedLevels),
		string(payload), stored.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting checkpoint: %w", err)
	}
	return nil
}

// Latest returns the most recent checkpoint for the run, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, runID string) (*types.Checkpoint, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM checkpoints WHERE run_id = ? ORDER BY id DESC LIMIT 1`,
		runID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest checkpoint: %w", err)
	}

	var cp types.Checkpoint
	if err := json.Unmarshal([]byte(payload), &cp); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return &cp, nil
}

// List returns metadata for all checkpoints of the run, oldest first.
func (s *Store) List(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, stage, levels, created_at
		 FROM checkpoints WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var stage, createdAt string
		if err := rows.Scan(&r.ID, &r.RunID, &stage, &r.Levels, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning checkpoint row: %w", err)
		}
		r.Stage = types.Stage(stage)
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Runs returns all run identifiers, most recently written first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, MAX(id) AS last FROM checkpoints GROUP BY run_id ORDER BY last DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var runID string
		var last int64
		if err := rows.Scan(&runID, &last); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, runID)
	}
	return runs, rows.Err()
}

// Prune deletes all but the newest keep checkpoints of the run and returns
// the number deleted. keep <= 0 deletes everything.
func (s *Store) Prune(ctx context.Context, runID string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE run_id = ? AND id NOT IN (
			SELECT id FROM checkpoints WHERE run_id = ? ORDER BY id DESC LIMIT ?
		)`,
		runID, runID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning checkpoints: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned checkpoints: %w", err)
	}
	return deleted, nil
}

// Sink returns a checkpoint sink bound to the run, in the shape the
// generation pipeline consumes.
func (s *Store) Sink(runID string) func(context.Context, *types.Checkpoint) error {
	return func(ctx context.Context, cp *types.Checkpoint) error {
		return s.Save(ctx, runID, cp)
	}
}
