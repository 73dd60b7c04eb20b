// Package logging provides structured, leveled logging for the scan loop.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stderr.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	sessionID string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger. Log lines go to stderr so stdout stays
// free for tool output and the console display.
func New() *Logger {
	return &Logger{
		output:   os.Stderr,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		sessionID: l.sessionID,
	}
}

// WithSessionID returns a new logger tagged with the given session ID.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		sessionID: sessionID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Loop lifecycle logging ---

// SessionStart logs the start of a scan session.
func (l *Logger) SessionStart(target, model string, maxSteps int) {
	l.Info("session_start", map[string]interface{}{
		"target":    target,
		"model":     model,
		"max_steps": maxSteps,
	})
}

// SessionComplete logs the end of a scan session.
func (l *Logger) SessionComplete(state string, steps int, duration time.Duration) {
	l.Info("session_complete", map[string]interface{}{
		"state":    state,
		"steps":    steps,
		"duration": duration.String(),
	})
}

// StepStart logs the start of a loop step.
func (l *Logger) StepStart(step int, phase string) {
	l.Info("step_start", map[string]interface{}{
		"step":  step,
		"phase": phase,
	})
}

// CommandResult logs the outcome of an executed command.
func (l *Logger) CommandResult(command string, exitCode int, duration time.Duration, failed bool) {
	fields := map[string]interface{}{
		"command":   command,
		"exit_code": exitCode,
		"duration":  duration.String(),
	}
	if failed {
		l.Warn("command_failed", fields)
	} else {
		l.Debug("command_result", fields)
	}
}

// CommandBlocked logs a command rejected by the safety policy.
func (l *Logger) CommandBlocked(command, reason string) {
	l.Warn("command_blocked", map[string]interface{}{
		"command":  command,
		"reason":   reason,
		"security": true,
	})
}

// DecisionError logs a model decision that could not be used.
func (l *Logger) DecisionError(step int, reason string) {
	l.Error("decision_error", map[string]interface{}{
		"step":   step,
		"reason": reason,
	})
}

// ParseRetry logs a failed parse attempt before a retry.
func (l *Logger) ParseRetry(attempt, maxAttempts int, reason string) {
	l.Warn("parse_retry", map[string]interface{}{
		"attempt": attempt,
		"max":     maxAttempts,
		"reason":  reason,
	})
}

// PhaseChange logs a methodology phase transition.
func (l *Logger) PhaseChange(from, to string) {
	l.Info("phase_change", map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// FindingsUpdated logs growth of the session findings state.
func (l *Logger) FindingsUpdated(findings, vulnerabilities, liveHosts, subdomains int) {
	l.Info("findings_updated", map[string]interface{}{
		"findings":        findings,
		"vulnerabilities": vulnerabilities,
		"live_hosts":      liveHosts,
		"subdomains":      subdomains,
	})
}
