package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Ensure SQLiteStore implements model.TranscriptStore.
var _ model.TranscriptStore = (*SQLiteStore)(nil)

// SQLiteStore keeps a history of assembled documents in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// transcripts table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS transcripts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		title      TEXT NOT NULL,
		path       TEXT NOT NULL,
		model      TEXT NOT NULL DEFAULT '',
		tokens     INTEGER NOT NULL DEFAULT 0,
		cost       REAL NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating transcripts table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record stores one assembled document. A zero CreatedAt is set to now.
func (s *SQLiteStore) Record(t model.Transcript) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO transcripts (session_id, title, path, model, tokens, cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.Title, t.Path, t.Model, t.Tokens, t.Cost, t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording transcript %s: %w", t.Path, err)
	}
	return nil
}

// List returns up to limit transcripts, newest first. limit <= 0 means all.
func (s *SQLiteStore) List(limit int) ([]model.Transcript, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT session_id, title, path, model, tokens, cost, created_at
		 FROM transcripts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	defer rows.Close()

	var out []model.Transcript
	for rows.Next() {
		var t model.Transcript
		if err := rows.Scan(&t.SessionID, &t.Title, &t.Path, &t.Model, &t.Tokens, &t.Cost, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transcript: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
