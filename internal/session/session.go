// Package session provides scan session persistence.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/reconloop/internal/intelligence"
)

// Status constants for sessions.
const (
	StatusRunning     = "running"
	StatusComplete    = "complete"
	StatusInterrupted = "interrupted"
	StatusFailed      = "failed"
)

// Session is one scan run against a target.
type Session struct {
	ID        string       `json:"id"`
	Target    string       `json:"target"`
	Phases    []string     `json:"phases"`
	Status    string       `json:"status"`
	State     string       `json:"state,omitempty"` // terminal loop state
	Error     string       `json:"error,omitempty"`
	Findings  FindingsSnap `json:"findings"`
	Steps     []StepRecord `json:"steps"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FindingsSnap is the persisted summary of accumulated findings.
type FindingsSnap struct {
	Vulnerabilities []string `json:"vulnerabilities"`
	Findings        []string `json:"interesting_findings"`
	LiveHosts       []string `json:"live_hosts"`
	Subdomains      []string `json:"subdomains"`
}

// StepRecord is one executed step: the full command, the full raw
// output (never truncated here), and the model's analysis.
type StepRecord struct {
	Step      int                    `json:"step"`
	Phase     string                 `json:"phase"`
	Command   string                 `json:"command"`
	Output    string                 `json:"output"`
	Analysis  *intelligence.Analysis `json:"analysis,omitempty"`
	Success   bool                   `json:"success"`
	Timestamp time.Time              `json:"timestamp"`
}

// Store is the interface for session persistence.
type Store interface {
	Save(sess *Session) error
	Load(id string) (*Session, error)
}

// New creates a fresh running session.
func New(target string, phases []string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Target:    target,
		Phases:    phases,
		Status:    StatusRunning,
		Steps:     []StepRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendStep adds a step record and bumps the update time.
func (s *Session) AppendStep(rec StepRecord) {
	s.Steps = append(s.Steps, rec)
	s.UpdatedAt = time.Now().UTC()
}

// Finish marks the session terminal.
func (s *Session) Finish(status, state, errMsg string) {
	s.Status = status
	s.State = state
	s.Error = errMsg
	s.UpdatedAt = time.Now().UTC()
}

// --- FileStore ---

// FileStore stores sessions as JSON files.
type FileStore struct {
	dir string
}

// NewFileStore creates a new file store.
func NewFileStore(dir string) *FileStore {
	os.MkdirAll(dir, 0755)
	return &FileStore{dir: dir}
}

// Save saves a session to a JSON file.
func (s *FileStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	filename := filepath.Join(s.dir, sess.ID+".json")
	tmpFile := filename + ".tmp"

	// Atomic write: write to temp file, then rename
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Load loads a session from a JSON file.
func (s *FileStore) Load(id string) (*Session, error) {
	filename := filepath.Join(s.dir, id+".json")

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// NewStore creates a Store of the given kind ("file" or "sqlite")
// rooted in dir.
func NewStore(kind, dir string) (Store, error) {
	switch kind {
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, "sessions.db"))
	case "file", "":
		return NewFileStore(dir), nil
	default:
		return nil, fmt.Errorf("unknown session store: %s", kind)
	}
}
