package artifacts

import (
	"database/sql"
	"fmt"
	"time"
)

// Reminder is a persisted reminder record.
type Reminder struct {
	ID           int64     `json:"id"`
	ThreadID     string    `json:"thread_id"`
	CheckpointID string    `json:"checkpoint_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
}

// Draft is a persisted email draft record.
type Draft struct {
	ID           int64     `json:"id"`
	ThreadID     string    `json:"thread_id"`
	CheckpointID string    `json:"checkpoint_id"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"`
}

// CreateReminder inserts a reminder and returns its id.
func (db *DB) CreateReminder(threadID, checkpointID, content string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec(`
		INSERT INTO reminders (thread_id, checkpoint_id, content, created_at, status)
		VALUES (?, ?, ?, ?, 'pending')
	`, threadID, checkpointID, content, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reminder id: %w", err)
	}
	return id, nil
}

// GetReminder retrieves a reminder by id. Returns nil if not found.
func (db *DB) GetReminder(id int64) (*Reminder, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRow(`
		SELECT id, thread_id, checkpoint_id, content, created_at, status
		FROM reminders WHERE id = ?
	`, id)

	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

// ListReminders lists reminders, optionally filtered by thread id, newest first.
func (db *DB) ListReminders(threadID string) ([]Reminder, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var rows *sql.Rows
	var err error

	if threadID != "" {
		rows, err = db.conn.Query(`
			SELECT id, thread_id, checkpoint_id, content, created_at, status
			FROM reminders WHERE thread_id = ? ORDER BY created_at DESC
		`, threadID)
	} else {
		rows, err = db.conn.Query(`
			SELECT id, thread_id, checkpoint_id, content, created_at, status
			FROM reminders ORDER BY created_at DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// CreateDraft inserts a draft and returns its id.
func (db *DB) CreateDraft(threadID, checkpointID, subject, body string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec(`
		INSERT INTO drafts (thread_id, checkpoint_id, subject, body, created_at, status)
		VALUES (?, ?, ?, ?, ?, 'draft')
	`, threadID, checkpointID, subject, body, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("create draft: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("draft id: %w", err)
	}
	return id, nil
}

// GetDraft retrieves a draft by id. Returns nil if not found.
func (db *DB) GetDraft(id int64) (*Draft, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRow(`
		SELECT id, thread_id, checkpoint_id, subject, body, created_at, status
		FROM drafts WHERE id = ?
	`, id)

	d, err := scanDraft(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

// ListDrafts lists drafts, optionally filtered by thread id, newest first.
func (db *DB) ListDrafts(threadID string) ([]Draft, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var rows *sql.Rows
	var err error

	if threadID != "" {
		rows, err = db.conn.Query(`
			SELECT id, thread_id, checkpoint_id, subject, body, created_at, status
			FROM drafts WHERE thread_id = ? ORDER BY created_at DESC
		`, threadID)
	} else {
		rows, err = db.conn.Query(`
			SELECT id, thread_id, checkpoint_id, subject, body, created_at, status
			FROM drafts ORDER BY created_at DESC
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(s scanner) (*Reminder, error) {
	var r Reminder
	var checkpointID sql.NullString
	var createdAt string
	if err := s.Scan(&r.ID, &r.ThreadID, &checkpointID, &r.Content, &createdAt, &r.Status); err != nil {
		return nil, err
	}
	if checkpointID.Valid {
		r.CheckpointID = checkpointID.String
	}
	r.CreatedAt, _ = parseTime(createdAt)
	return &r, nil
}

func scanDraft(s scanner) (*Draft, error) {
	var d Draft
	var checkpointID, subject sql.NullString
	var createdAt string
	if err := s.Scan(&d.ID, &d.ThreadID, &checkpointID, &subject, &d.Body, &createdAt, &d.Status); err != nil {
		return nil, err
	}
	if checkpointID.Valid {
		d.CheckpointID = checkpointID.String
	}
	if subject.Valid {
		d.Subject = subject.String
	}
	d.CreatedAt, _ = parseTime(createdAt)
	return &d, nil
}
