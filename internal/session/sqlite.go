package session

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openclaw/reconloop/internal/intelligence"
)

// SQLiteStore stores sessions in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// init creates the database schema.
func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		phases TEXT,
		status TEXT NOT NULL,
		state TEXT,
		error TEXT,
		findings TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		phase TEXT NOT NULL,
		command TEXT NOT NULL,
		output TEXT,
		analysis TEXT,
		success INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_session ON steps(session_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Save saves a session to the database.
func (s *SQLiteStore) Save(sess *Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	phasesJSON, _ := json.Marshal(sess.Phases)
	findingsJSON, _ := json.Marshal(sess.Findings)

	// Upsert session
	_, err = tx.Exec(`
		INSERT INTO sessions (id, target, phases, status, state, error, findings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			state = excluded.state,
			error = excluded.error,
			findings = excluded.findings,
			updated_at = excluded.updated_at
	`, sess.ID, sess.Target, string(phasesJSON), sess.Status, sess.State, sess.Error,
		string(findingsJSON), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// Delete existing steps (full replacement)
	_, err = tx.Exec("DELETE FROM steps WHERE session_id = ?", sess.ID)
	if err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}

	for _, rec := range sess.Steps {
		analysisJSON, _ := json.Marshal(rec.Analysis)
		_, err = tx.Exec(`
			INSERT INTO steps (session_id, step, phase, command, output, analysis, success, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, rec.Step, rec.Phase, rec.Command, rec.Output,
			string(analysisJSON), rec.Success, rec.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save step: %w", err)
		}
	}

	return tx.Commit()
}

// Load loads a session from the database.
func (s *SQLiteStore) Load(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, target, phases, status, state, error, findings, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var sess Session
	var phasesJSON, findingsJSON string

	err := row.Scan(&sess.ID, &sess.Target, &phasesJSON, &sess.Status, &sess.State,
		&sess.Error, &findingsJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	json.Unmarshal([]byte(phasesJSON), &sess.Phases)
	json.Unmarshal([]byte(findingsJSON), &sess.Findings)

	rows, err := s.db.Query(`
		SELECT step, phase, command, output, analysis, success, timestamp
		FROM steps WHERE session_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	sess.Steps = []StepRecord{}
	for rows.Next() {
		var rec StepRecord
		var output, analysisJSON sql.NullString
		err := rows.Scan(&rec.Step, &rec.Phase, &rec.Command, &output, &analysisJSON, &rec.Success, &rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if output.Valid {
			rec.Output = output.String
		}
		if analysisJSON.Valid && analysisJSON.String != "" && analysisJSON.String != "null" {
			var a intelligence.Analysis
			if json.Unmarshal([]byte(analysisJSON.String), &a) == nil {
				rec.Analysis = &a
			}
		}
		sess.Steps = append(sess.Steps, rec)
	}

	return &sess, nil
}
