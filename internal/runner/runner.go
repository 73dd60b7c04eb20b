// Package runner executes one shell command at a time with a timeout,
// an augmented PATH, and a pre-execution safety filter. Execute never
// returns an error: every failure mode resolves to a descriptive
// output string so the loop never crashes on a tool fault.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/openclaw/reconloop/internal/logging"
	"github.com/openclaw/reconloop/internal/policy"
)

// AuditEntry records a command the runner actually invoked.
type AuditEntry struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Runner executes shell commands for the scan loop.
type Runner struct {
	timeout    time.Duration
	extraPaths []string
	logger     *logging.Logger
	audit      []AuditEntry
}

// New creates a Runner. extraPaths are appended to the inherited PATH
// so tools installed outside the default search path resolve.
func New(timeout time.Duration, extraPaths []string, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.New()
	}
	return &Runner{
		timeout:    timeout,
		extraPaths: extraPaths,
		logger:     logger.WithComponent("runner"),
	}
}

// Execute runs one shell-interpreted command and returns its output.
// Blocked, failed, and timed-out commands all come back as strings.
func (r *Runner) Execute(ctx context.Context, command string) string {
	if allowed, reason := policy.CheckCommand(command); !allowed {
		r.logger.CommandBlocked(command, reason)
		return policy.BlockedMessage(reason)
	}

	// Record before invocation so killed commands still leave a trail.
	r.audit = append(r.audit, AuditEntry{Command: command, Timestamp: time.Now().UTC()})

	runCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Env = r.buildEnv()

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		// CommandContext has killed and reaped the process by the
		// time Run returns, so no orphan survives the timeout.
		r.logger.Warn("command_timeout", map[string]interface{}{
			"command": command,
			"timeout": r.timeout.String(),
		})
		return fmt.Sprintf("Command timed out after %s", r.timeout)
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			// Setup or I/O fault, not a tool exit.
			r.logger.Error("command_error", map[string]interface{}{
				"command": command,
				"error":   err.Error(),
			})
			return fmt.Sprintf("Command failed: %s", err)
		}
	}

	output := combineOutput(stdout.String(), stderr.String(), exitCode)
	if strings.TrimSpace(output) == "" {
		output = fmt.Sprintf("[No output. Exit code: %d]", exitCode)
	}

	r.logger.CommandResult(command, exitCode, elapsed, exitCode != 0)
	return output
}

// combineOutput picks stdout on success; on non-zero exit it keeps
// both streams, labeled, so failure context reaches the model.
func combineOutput(stdout, stderr string, exitCode int) string {
	if exitCode == 0 {
		return stdout
	}
	if strings.TrimSpace(stdout) == "" {
		return stderr
	}
	return fmt.Sprintf("stdout:\n%s\nstderr:\n%s", stdout, stderr)
}

// buildEnv returns the process environment with extra tool search
// paths appended to PATH.
func (r *Runner) buildEnv() []string {
	env := os.Environ()
	if len(r.extraPaths) == 0 {
		return env
	}
	extra := strings.Join(r.extraPaths, string(os.PathListSeparator))
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = kv + string(os.PathListSeparator) + extra
			return env
		}
	}
	return append(env, "PATH="+extra)
}

// AuditLog returns a copy of the executed-command audit trail.
// Blocked commands never appear here.
func (r *Runner) AuditLog() []AuditEntry {
	out := make([]AuditEntry, len(r.audit))
	copy(out, r.audit)
	return out
}
