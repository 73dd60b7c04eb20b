package display

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/openclaw/reconloop/internal/session"
)

// FollowSession renders a session file and re-renders it whenever the
// file changes, until ctx is cancelled. Useful for watching a scan
// that is writing its session from another terminal.
func FollowSession(ctx context.Context, w io.Writer, path string, verbose bool) error {
	render := func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var sess session.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			// A partially written file; skip this round.
			return nil
		}
		RenderSession(w, &sess, verbose)
		return nil
	}

	if err := render(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce: wait a bit for writes to settle
				time.Sleep(100 * time.Millisecond)
				if err := render(); err != nil {
					return err
				}
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Ignore errors, keep watching
		}
	}
}
