// Package checkpoint provides SQLite-based persistence for orchestrator
// state snapshots. Checkpoints form an append-only chain per thread via
// parent pointers; the state payload is opaque JSON so the store carries no
// dependency on the orchestrator's types.
package checkpoint

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Checkpoint is one immutable snapshot in a thread's chain.
type Checkpoint struct {
	// ThreadID scopes the checkpoint to one session.
	ThreadID string `json:"thread_id"`
	// CheckpointID uniquely identifies this snapshot within the thread.
	CheckpointID string `json:"checkpoint_id"`
	// ParentCheckpointID links to the preceding snapshot; empty for the
	// first checkpoint of a thread.
	ParentCheckpointID string `json:"parent_checkpoint_id,omitempty"`
	// State is the serialized orchestrator state.
	State json.RawMessage `json:"state"`
	// CreatedAt is when the snapshot was written.
	CreatedAt time.Time `json:"created_at"`
}

// ThreadSummary describes one thread's presence in the store.
type ThreadSummary struct {
	ThreadID    string
	Checkpoints int
}

// Store persists checkpoints in SQLite. Writers for distinct threads may
// run concurrently; callers must not run two transitions for the same
// thread at once.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens the checkpoint store at the given path, creating parent
// directories if needed. WAL mode is enabled for concurrent access.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id TEXT NOT NULL,
			checkpoint_id TEXT NOT NULL,
			parent_checkpoint_id TEXT,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (thread_id, checkpoint_id)
		);

		CREATE INDEX IF NOT EXISTS idx_checkpoints_thread_id ON checkpoints(thread_id);
	`)
	if err != nil {
		return fmt.Errorf("create checkpoints table: %w", err)
	}
	return nil
}

// Save appends a checkpoint to its thread's chain. Checkpoints are
// immutable: saving an existing (thread_id, checkpoint_id) pair fails.
func (s *Store) Save(cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := cp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var parent any
	if cp.ParentCheckpointID != "" {
		parent = cp.ParentCheckpointID
	}

	_, err := s.conn.Exec(`
		INSERT INTO checkpoints (thread_id, checkpoint_id, parent_checkpoint_id, state, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, cp.ThreadID, cp.CheckpointID, parent, string(cp.State), createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Latest returns the most recent checkpoint for a thread, or nil if the
// thread has none.
func (s *Store) Latest(threadID string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`
		SELECT thread_id, checkpoint_id, parent_checkpoint_id, state, created_at
		FROM checkpoints WHERE thread_id = ? ORDER BY rowid DESC LIMIT 1
	`, threadID)

	return scanCheckpoint(row)
}

// Get returns a specific checkpoint by id, or nil if not found.
func (s *Store) Get(threadID, checkpointID string) (*Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`
		SELECT thread_id, checkpoint_id, parent_checkpoint_id, state, created_at
		FROM checkpoints WHERE thread_id = ? AND checkpoint_id = ?
	`, threadID, checkpointID)

	return scanCheckpoint(row)
}

// Load returns the checkpoint identified by checkpointID, or the latest
// checkpoint of the thread when checkpointID is empty.
func (s *Store) Load(threadID, checkpointID string) (*Checkpoint, error) {
	if checkpointID == "" {
		return s.Latest(threadID)
	}
	return s.Get(threadID, checkpointID)
}

// History returns a thread's checkpoints in insertion order.
func (s *Store) History(threadID string) ([]Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT thread_id, checkpoint_id, parent_checkpoint_id, state, created_at
		FROM checkpoints WHERE thread_id = ? ORDER BY rowid ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint history: %w", err)
	}
	defer rows.Close()

	var history []Checkpoint
	for rows.Next() {
		cp, err := scanCheckpointRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		history = append(history, *cp)
	}
	return history, rows.Err()
}

// Threads returns a summary of every thread in the store, most recently
// written first.
func (s *Store) Threads() ([]ThreadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT thread_id, COUNT(*)
		FROM checkpoints
		GROUP BY thread_id
		ORDER BY MAX(rowid) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []ThreadSummary
	for rows.Next() {
		var t ThreadSummary
		if err := rows.Scan(&t.ThreadID, &t.Checkpoints); err != nil {
			return nil, fmt.Errorf("scan thread summary: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func scanCheckpoint(row *sql.Row) (*Checkpoint, error) {
	cp, err := scanCheckpointRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return cp, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCheckpointRow(s scanner) (*Checkpoint, error) {
	var cp Checkpoint
	var parent sql.NullString
	var state, createdAt string
	if err := s.Scan(&cp.ThreadID, &cp.CheckpointID, &parent, &state, &createdAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		cp.ParentCheckpointID = parent.String
	}
	cp.State = json.RawMessage(state)
	cp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &cp, nil
}
