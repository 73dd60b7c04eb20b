package intelligence

import (
	"testing"
)

func TestParseDecision_DirectJSON(t *testing.T) {
	d, err := ParseDecision(`{"command": "nmap -sV example.com", "next_phase": "scanning", "stop": false, "reasoning": "service detection"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Command != "nmap -sV example.com" {
		t.Errorf("unexpected command: %q", d.Command)
	}
	if d.NextPhase != "scanning" {
		t.Errorf("unexpected phase: %q", d.NextPhase)
	}
	if d.Stop {
		t.Error("stop should be false")
	}
}

func TestParseDecision_FencedBlock(t *testing.T) {
	content := "Here is my decision:\n```json\n{\"command\": \"subfinder -d example.com\", \"stop\": false}\n```\nGood luck!"
	d, err := ParseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Command != "subfinder -d example.com" {
		t.Errorf("unexpected command: %q", d.Command)
	}
	if d.Reasoning != "No reasoning provided" {
		t.Errorf("missing reasoning should default, got %q", d.Reasoning)
	}
}

func TestParseDecision_BraceSlice(t *testing.T) {
	content := `Sure! The next step should be {"command": "nikto -h example.com", "stop": false} as discussed.`
	d, err := ParseDecision(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Command != "nikto -h example.com" {
		t.Errorf("unexpected command: %q", d.Command)
	}
}

func TestParseDecision_StopAllowsEmptyCommand(t *testing.T) {
	d, err := ParseDecision(`{"command": "", "stop": true, "reasoning": "enumeration exhausted"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Stop {
		t.Error("stop should be true")
	}
}

func TestParseDecision_EmptyCommandWithoutStopFails(t *testing.T) {
	if _, err := ParseDecision(`{"command": "", "stop": false}`); err == nil {
		t.Error("empty command without stop should fail validation")
	}
}

func TestParseDecision_MissingCommandKeyFails(t *testing.T) {
	if _, err := ParseDecision(`{"stop": true}`); err == nil {
		t.Error("missing command key should fail validation")
	}
}

func TestParseDecision_PlainProseFails(t *testing.T) {
	if _, err := ParseDecision("I think you should run nmap next."); err == nil {
		t.Error("prose without JSON should fail")
	}
}

func TestParseAnalysis_Valid(t *testing.T) {
	a := ParseAnalysis(`{"findings": ["open port 22"], "vulnerabilities": [], "next_actions": ["probe ssh"], "risk_level": "low", "summary": "ssh exposed"}`)
	if len(a.Findings) != 1 || a.Findings[0] != "open port 22" {
		t.Errorf("unexpected findings: %v", a.Findings)
	}
	if a.RiskLevel != "low" {
		t.Errorf("unexpected risk level: %q", a.RiskLevel)
	}
}

func TestParseAnalysis_GarbageDegrades(t *testing.T) {
	a := ParseAnalysis("not json at all")
	if a.Summary != "Analysis unavailable" {
		t.Errorf("expected degraded analysis, got %+v", a)
	}
	if a.RiskLevel != "unknown" {
		t.Errorf("degraded risk level should be unknown, got %q", a.RiskLevel)
	}
	if len(a.NextActions) != 1 || a.NextActions[0] != "Continue with next phase" {
		t.Errorf("unexpected degraded next actions: %v", a.NextActions)
	}
}

func TestParseAnalysis_NilSlicesNormalized(t *testing.T) {
	a := ParseAnalysis(`{"summary": "quiet scan"}`)
	if a.Findings == nil || a.Vulnerabilities == nil || a.NextActions == nil {
		t.Error("absent list fields should come back as empty slices")
	}
	if a.RiskLevel != "unknown" {
		t.Errorf("absent risk level should default to unknown, got %q", a.RiskLevel)
	}
}
