// Package executor owns the scan control loop: ask the model for the
// next command, run it, classify and analyze the output, accumulate
// findings, and decide whether to continue.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openclaw/reconloop/internal/config"
	"github.com/openclaw/reconloop/internal/intelligence"
	"github.com/openclaw/reconloop/internal/logging"
	"github.com/openclaw/reconloop/internal/session"
)

// State is the orchestrator's loop state.
type State string

const (
	StateRunning        State = "RUNNING"
	StateStoppedByAI    State = "STOPPED_BY_AI"
	StateStoppedByLimit State = "STOPPED_BY_LIMIT"
	StateInterrupted    State = "INTERRUPTED"
)

// failureIndicators classify command output, case-insensitively.
// The "[no output. exit code:" entry matches the runner's
// empty-output marker.
var failureIndicators = []string{
	"command not found",
	"no such file",
	"permission denied",
	"error:",
	"failed to",
	"[no output. exit code:",
	"usage:",
}

// CommandExecutor runs one shell command and resolves every failure
// into a descriptive string. *runner.Runner implements this.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) string
}

// DecisionClient proposes commands and analyzes output.
// *intelligence.Client implements this.
type DecisionClient interface {
	ProposeCommand(ctx context.Context, pctx intelligence.PromptContext) *intelligence.Decision
	AnalyzeOutput(ctx context.Context, command, output, phase string) *intelligence.Analysis
}

// Observer receives loop progress for presentation. All methods are
// called from the single control thread.
type Observer interface {
	StepStart(step int, phase string)
	Decision(d *intelligence.Decision)
	CommandResult(output string, success bool, consecutiveFailures, maxFailures int)
	Analysis(a *intelligence.Analysis, output string)
	SessionEnd(sum *Summary)
}

// nopObserver is the default when no presentation layer is attached.
type nopObserver struct{}

func (nopObserver) StepStart(int, string)                          {}
func (nopObserver) Decision(*intelligence.Decision)                {}
func (nopObserver) CommandResult(string, bool, int, int)           {}
func (nopObserver) Analysis(*intelligence.Analysis, string)        {}
func (nopObserver) SessionEnd(*Summary)                            {}

// Summary is the terminal report of a session.
type Summary struct {
	SessionID       string
	Target          string
	State           State
	Steps           int
	Duration        time.Duration
	Vulnerabilities int
	LiveHosts       int
	Subdomains      int
	StopError       string
}

// Orchestrator drives the control loop. One step runs fully to
// completion before the next starts: no concurrent AI calls, no
// concurrent tool executions.
type Orchestrator struct {
	cfg      *config.Config
	client   DecisionClient
	runner   CommandExecutor
	store    session.Store
	history  *session.HistoryLog
	logger   *logging.Logger
	observer Observer

	phases    []string
	findings  *FindingsState
	stepPause time.Duration
}

// New creates an Orchestrator. store and history may be nil, which
// disables the respective persistence. observer may be nil.
func New(cfg *config.Config, client DecisionClient, run CommandExecutor, store session.Store, history *session.HistoryLog, phases []string, logger *logging.Logger, observer Observer) *Orchestrator {
	if logger == nil {
		logger = logging.New()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Orchestrator{
		cfg:       cfg,
		client:    client,
		runner:    run,
		store:     store,
		history:   history,
		logger:    logger.WithComponent("executor"),
		observer:  observer,
		phases:    phases,
		findings:  NewFindingsState(),
		stepPause: time.Second,
	}
}

// Run executes the session loop until a terminal state. It returns
// the summary; the error is non-nil only for setup faults, never for
// loop-internal ones.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	if len(o.phases) == 0 {
		return nil, fmt.Errorf("no methodology phases")
	}

	sess := session.New(o.cfg.Target, o.phases)
	logger := o.logger.WithSessionID(sess.ID)
	logger.SessionStart(o.cfg.Target, o.cfg.LLM.Model, o.cfg.Limits.MaxSteps)

	start := time.Now()
	ctx, span := o.startSessionSpan(ctx, sess.ID)
	defer span.End()

	state := StateRunning
	currentPhase := o.phases[0]
	step := 0
	consecutiveFailures := 0
	maxSteps := o.cfg.Limits.MaxSteps
	maxFailures := o.cfg.Limits.MaxConsecutiveFailures
	stopError := ""

	for step < maxSteps && consecutiveFailures < maxFailures {
		if ctx.Err() != nil {
			state = StateInterrupted
			break
		}
		step++

		logger.StepStart(step, currentPhase)
		o.observer.StepStart(step, currentPhase)

		stepCtx, stepSpan := o.startStepSpan(ctx, step, currentPhase)

		decision := o.client.ProposeCommand(stepCtx, o.promptContext(sess, currentPhase, step))
		if ctx.Err() != nil {
			// Partial decisions from an aborted step are discarded.
			stepSpan.End()
			state = StateInterrupted
			step--
			break
		}
		if decision.Stop || decision.Command == "" {
			state = StateStoppedByAI
			stopError = decision.Error
			if stopError != "" {
				logger.DecisionError(step, stopError)
			}
			o.observer.Decision(decision)
			o.endStepSpan(stepSpan, "", false, true)
			step--
			break
		}

		command := strings.TrimSpace(decision.Command)
		nextPhase := decision.NextPhase
		o.observer.Decision(decision)

		output := o.runner.Execute(stepCtx, command)
		if ctx.Err() != nil {
			// Aborted mid-execution: do not merge partial output.
			stepSpan.End()
			state = StateInterrupted
			step--
			break
		}

		success := classifySuccess(output)
		if success {
			consecutiveFailures = 0
		} else {
			consecutiveFailures++
		}
		o.observer.CommandResult(output, success, consecutiveFailures, maxFailures)

		analysis := o.client.AnalyzeOutput(stepCtx, command, output, currentPhase)
		o.observer.Analysis(analysis, output)

		o.findings.Merge(analysis, output)
		logger.FindingsUpdated(
			len(o.findings.Findings),
			len(o.findings.Vulnerabilities),
			len(o.findings.LiveHosts),
			len(o.findings.Subdomains),
		)

		rec := session.StepRecord{
			Step:      step,
			Phase:     currentPhase,
			Command:   command,
			Output:    output,
			Analysis:  analysis,
			Success:   success,
			Timestamp: time.Now().UTC(),
		}
		sess.AppendStep(rec)
		sess.Findings = o.findings.Snapshot()
		o.persist(sess, rec, logger)

		o.endStepSpan(stepSpan, command, success, false)

		if nextPhase != "" && nextPhase != currentPhase {
			logger.PhaseChange(currentPhase, nextPhase)
			currentPhase = nextPhase
		}

		// Brief pause between commands.
		select {
		case <-ctx.Done():
		case <-time.After(o.stepPause):
		}
	}

	if state == StateRunning {
		state = StateStoppedByLimit
	}

	status := session.StatusComplete
	if state == StateInterrupted {
		status = session.StatusInterrupted
	}
	sess.Finish(status, string(state), stopError)
	if o.store != nil {
		if err := o.store.Save(sess); err != nil {
			logger.Error("session_save_failed", map[string]interface{}{"error": err.Error()})
		}
	}

	sum := &Summary{
		SessionID:       sess.ID,
		Target:          o.cfg.Target,
		State:           state,
		Steps:           step,
		Duration:        time.Since(start),
		Vulnerabilities: len(o.findings.Vulnerabilities),
		LiveHosts:       len(o.findings.LiveHosts),
		Subdomains:      len(o.findings.Subdomains),
		StopError:       stopError,
	}
	logger.SessionComplete(string(state), step, sum.Duration)
	o.endSessionSpan(span, sum)
	o.observer.SessionEnd(sum)
	return sum, nil
}

// Findings exposes the accumulator, mainly for tests and the final
// console report.
func (o *Orchestrator) Findings() *FindingsState {
	return o.findings
}

// persist writes the step to the history log and the session store,
// best-effort: persistence faults never stop the loop.
func (o *Orchestrator) persist(sess *session.Session, rec session.StepRecord, logger *logging.Logger) {
	if o.history != nil {
		if err := o.history.Append(rec); err != nil {
			logger.Error("history_append_failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if o.store != nil {
		if err := o.store.Save(sess); err != nil {
			logger.Error("session_save_failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// promptContext assembles the model's view of the session so far.
func (o *Orchestrator) promptContext(sess *session.Session, phase string, step int) intelligence.PromptContext {
	return intelligence.PromptContext{
		Target:          o.cfg.Target,
		Phase:           phase,
		Phases:          o.phases,
		Tools:           o.cfg.Tools,
		Step:            step,
		HistoryText:     o.historyText(sess),
		Vulnerabilities: len(o.findings.Vulnerabilities),
		LiveHosts:       len(o.findings.LiveHosts),
		Subdomains:      len(o.findings.Subdomains),
	}
}

// historyText condenses the recent history window for the prompt:
// the last MaxHistoryLines entries, each with its success flag, up
// to three findings, and an output excerpt bounded by MaxOutputChars.
// Full output is only ever truncated here, never in persistence.
func (o *Orchestrator) historyText(sess *session.Session) string {
	window := sess.Steps
	if n := o.cfg.Limits.MaxHistoryLines; n > 0 && len(window) > n {
		window = window[len(window)-n:]
	}
	if len(window) == 0 {
		return ""
	}

	var entries []string
	for _, h := range window {
		var findings string
		if h.Analysis != nil && len(h.Analysis.Findings) > 0 {
			top := h.Analysis.Findings
			if len(top) > 3 {
				top = top[:3]
			}
			findings = strings.Join(top, ", ")
		}
		if findings == "" {
			findings = "None"
		}

		excerpt := h.Output
		if limit := o.cfg.Limits.MaxOutputChars; limit > 0 && len(excerpt) > limit {
			excerpt = excerpt[:limit]
		}

		entries = append(entries, fmt.Sprintf(
			"[%s] %s\n  -> Success: %t, Findings: %s\n  -> Output: %s...",
			h.Phase, h.Command, h.Success, findings, excerpt,
		))
	}
	return strings.Join(entries, "\n")
}

// classifySuccess treats empty output or any failure indicator as a
// failed step. The substring match is deliberately blunt: output that
// merely mentions "error:" counts as a failure.
func classifySuccess(output string) bool {
	if strings.TrimSpace(output) == "" {
		return false
	}
	lower := strings.ToLower(output)
	for _, indicator := range failureIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	return true
}
