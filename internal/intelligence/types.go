// Package intelligence talks to the model: it proposes the next
// command and analyzes tool output, always returning usable values
// even when the model misbehaves.
package intelligence

// Decision is the model's proposed next action.
type Decision struct {
	Command   string `json:"command"`
	NextPhase string `json:"next_phase"`
	Stop      bool   `json:"stop"`
	Reasoning string `json:"reasoning"`
	Error     string `json:"error,omitempty"`
}

// ErrorDecision is the canonical failure Decision: empty command,
// stop set, the failure reason in Error.
func ErrorDecision(msg string) *Decision {
	return &Decision{
		Command:   "",
		NextPhase: "",
		Stop:      true,
		Error:     msg,
	}
}

// Analysis is the model's interpretation of one command's output.
type Analysis struct {
	Findings        []string `json:"findings"`
	Vulnerabilities []string `json:"vulnerabilities"`
	NextActions     []string `json:"next_actions"`
	RiskLevel       string   `json:"risk_level"`
	Summary         string   `json:"summary"`
}

// DegradedAnalysis is the fixed fallback used whenever analysis
// fails. Analysis failures must never halt the loop.
func DegradedAnalysis() *Analysis {
	return &Analysis{
		Findings:        []string{},
		Vulnerabilities: []string{},
		NextActions:     []string{"Continue with next phase"},
		RiskLevel:       "unknown",
		Summary:         "Analysis unavailable",
	}
}

// PromptContext is everything the orchestrator knows that the model
// needs to pick the next command.
type PromptContext struct {
	Target          string
	Phase           string
	Phases          []string
	Tools           []string
	Step            int
	HistoryText     string
	Vulnerabilities int
	LiveHosts       int
	Subdomains      int
}
