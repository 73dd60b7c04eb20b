package intelligence

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceSliceRe  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseDecision extracts a valid Decision from raw model text. It
// tries, in order: the whole text as JSON, a fenced code block, and
// the first greedy brace-delimited slice. Each candidate must pass
// the Decision invariant check to win.
func ParseDecision(content string) (*Decision, error) {
	content = strings.TrimSpace(content)

	candidates := []string{content}
	if m := fencedBlockRe.FindStringSubmatch(content); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := braceSliceRe.FindString(content); m != "" {
		candidates = append(candidates, m)
	}

	var lastErr error
	for _, candidate := range candidates {
		d, err := decodeDecision(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return d, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found in response")
	}
	return nil, lastErr
}

// decodeDecision parses one candidate string and enforces the
// Decision invariants: the object must carry a "command" key, and
// the command may be empty only when stop is true.
func decodeDecision(candidate string) (*Decision, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, err
	}

	cmdVal, ok := raw["command"]
	if !ok {
		return nil, fmt.Errorf("response missing command field")
	}

	d := &Decision{
		Reasoning: "No reasoning provided",
	}
	if s, ok := cmdVal.(string); ok {
		d.Command = strings.TrimSpace(s)
	}
	if s, ok := raw["next_phase"].(string); ok {
		d.NextPhase = s
	}
	if b, ok := raw["stop"].(bool); ok {
		d.Stop = b
	}
	if s, ok := raw["reasoning"].(string); ok && s != "" {
		d.Reasoning = s
	}

	if !d.Stop && d.Command == "" {
		return nil, fmt.Errorf("non-stop decision has empty command")
	}
	return d, nil
}

// ParseAnalysis parses model text as an Analysis. One direct attempt;
// any failure yields the fixed degraded Analysis instead of an error.
func ParseAnalysis(content string) *Analysis {
	content = strings.TrimSpace(content)

	var a Analysis
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return DegradedAnalysis()
	}
	if a.Findings == nil {
		a.Findings = []string{}
	}
	if a.Vulnerabilities == nil {
		a.Vulnerabilities = []string{}
	}
	if a.NextActions == nil {
		a.NextActions = []string{}
	}
	if a.RiskLevel == "" {
		a.RiskLevel = "unknown"
	}
	return &a
}
