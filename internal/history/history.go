// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records runs and published documents in a SQLite
// database kept in the state directory. Archive imports consult it to skip
// messages that were already published.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/quotesite/pkg/types"
)

// DBFile is the database file name inside the state directory.
const DBFile = "history.db"

// Run status values.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusNoContent = "no_content"
	StatusFailed    = "failed"
)

// Run is one invocation of a pipeline command.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Command    string    `json:"command" yaml:"command"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status     string    `json:"status" yaml:"status"`
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Document is a published document as recorded in history.
type Document struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	MessageID   int64              `json:"message_id,omitempty" yaml:"message_id,omitempty"`
	Kind        types.DocumentKind `json:"kind" yaml:"kind"`
	Path        string             `json:"path" yaml:"path"`
	Filename    string             `json:"filename" yaml:"filename"`
	Date        time.Time          `json:"date" yaml:"date"`
	PublishedAt time.Time          `json:"published_at" yaml:"published_at"`
}

// Store is the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database in stateDir.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	dbPath := filepath.Join(stateDir, DBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			detail TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			message_id INTEGER,
			kind TEXT NOT NULL,
			path TEXT NOT NULL,
			filename TEXT NOT NULL,
			date TEXT,
			published_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_message_id ON documents(message_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BeginRun records the start of a run and returns it with a fresh ID.
func (s *Store) BeginRun(ctx context.Context, command string) (Run, error) {
	r := Run{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: s.now().UTC(),
		Status:    StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at, status) VALUES (?, ?, ?, ?)`,
		r.ID, r.Command, formatTime(r.StartedAt), r.Status)
	if err != nil {
		return Run{}, fmt.Errorf("recording run start: %w", err)
	}
	return r, nil
}

// FinishRun records the outcome of run id.
func (s *Store) FinishRun(ctx context.Context, id, status, detail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, detail = ? WHERE id = ?`,
		formatTime(s.now()), status, detail, id)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("recording run finish: unknown run %s", id)
	}
	return nil
}

// RecordDocument records doc as published by run runID. messageID is the
// source message for imports and 0 otherwise.
func (s *Store) RecordDocument(ctx context.Context, runID string, messageID int64, doc types.PublishedDocument) error {
	var msg sql.NullInt64
	if messageID != 0 {
		msg = sql.NullInt64{Int64: messageID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (run_id, message_id, kind, path, filename, date, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, msg, string(doc.Kind), doc.Path, doc.Filename, formatTime(doc.Date), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("recording document %s: %w", doc.Filename, err)
	}
	return nil
}

// SeenMessage reports whether a document was already published from
// message id.
func (s *Store) SeenMessage(ctx context.Context, id int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE message_id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking message %d: %w", id, err)
	}
	return n > 0, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, started_at, finished_at, status, detail FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished, detail sql.NullString
		if err := rows.Scan(&r.ID, &r.Command, &started, &finished, &r.Status, &detail); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		r.Detail = detail.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecentDocuments returns up to limit documents, most recently published
// first.
func (s *Store) RecentDocuments(ctx context.Context, limit int) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, message_id, kind, path, filename, date, published_at FROM documents
		 ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var msg sql.NullInt64
		var kind string
		var date, published sql.NullString
		if err := rows.Scan(&d.RunID, &msg, &kind, &d.Path, &d.Filename, &date, &published); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.MessageID = msg.Int64
		d.Kind = types.DocumentKind(kind)
		d.Date = parseTime(date)
		d.PublishedAt = parseTime(published)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
