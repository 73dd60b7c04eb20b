package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// HistoryLog is the unbounded append-only step log: full raw command,
// full raw output, and the serialized analysis for every step. No
// rotation or retention.
type HistoryLog struct {
	mu sync.Mutex
	f  *os.File
}

// OpenHistoryLog opens (or creates) the history log at path for append.
func OpenHistoryLog(path string) (*HistoryLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history log: %w", err)
	}
	return &HistoryLog{f: f}, nil
}

// Append writes one step record in the human-readable block format.
func (h *HistoryLog) Append(rec StepRecord) error {
	analysisJSON, _ := json.MarshalIndent(rec.Analysis, "", "  ")

	var b strings.Builder
	sep := strings.Repeat("=", 100)
	fmt.Fprintf(&b, "\n%s\n", sep)
	fmt.Fprintf(&b, "STEP %d | PHASE: %s | TIME: %s\n", rec.Step, rec.Phase, rec.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n", sep)
	fmt.Fprintf(&b, "COMMAND:\n%s\n\n", rec.Command)
	fmt.Fprintf(&b, "ANALYSIS:\n%s\n\n", analysisJSON)
	fmt.Fprintf(&b, "OUTPUT:\n%s\n", rec.Output)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.f.WriteString(b.String())
	return err
}

// Close closes the underlying file.
func (h *HistoryLog) Close() error {
	return h.f.Close()
}
