package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/openclaw/reconloop/internal/executor"
	"github.com/openclaw/reconloop/internal/intelligence"
	"github.com/openclaw/reconloop/internal/session"
)

func TestConsoleStepFlow(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Banner("scanme.example.com", "gpt-4o", 50)
	c.StepStart(1, "reconnaissance")
	c.Decision(&intelligence.Decision{Command: "nmap -sV scanme.example.com", Reasoning: "start with a service scan"})
	c.CommandResult("PORT   STATE SERVICE\n80/tcp open  http\n", true, 0, 5)
	c.Analysis(&intelligence.Analysis{
		RiskLevel:       "medium",
		Summary:         "web server exposed",
		Vulnerabilities: []string{"outdated nginx"},
		Findings:        []string{"port 80 open"},
	}, "")

	out := buf.String()
	for _, want := range []string{
		"scanme.example.com",
		"Step 1",
		"reconnaissance",
		"nmap -sV",
		"command succeeded",
		"web server exposed",
		"outdated nginx",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleFailureShowsStreak(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.CommandResult("bash: nmap: command not found", false, 2, 5)

	if !strings.Contains(buf.String(), "(2/5 consecutive)") {
		t.Fatalf("missing streak counter:\n%s", buf.String())
	}
}

func TestConsoleSessionEnd(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.SessionEnd(&executor.Summary{
		SessionID:       "abc",
		Target:          "scanme.example.com",
		State:           executor.StateStoppedByAI,
		Steps:           7,
		Duration:        90 * time.Second,
		Vulnerabilities: 2,
		StopError:       "Max retries exceeded",
	})

	out := buf.String()
	for _, want := range []string{"Session complete", "STOPPED_BY_AI", "1m30s", "Max retries exceeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewLinesElides(t *testing.T) {
	out := previewLines("a\nb\nc\nd\n", 2)
	if len(out) != 3 {
		t.Fatalf("lines = %v", out)
	}
	if !strings.Contains(out[2], "2 more lines") {
		t.Fatalf("missing elision marker: %v", out)
	}
}

func TestRenderSession(t *testing.T) {
	sess := session.New("scanme.example.com", []string{"reconnaissance"})
	sess.AppendStep(session.StepRecord{
		Step:    1,
		Phase:   "reconnaissance",
		Command: "httpx -l hosts.txt",
		Output:  "http://app.example.com\n",
		Success: true,
		Analysis: &intelligence.Analysis{
			RiskLevel: "low",
			Summary:   "one live host",
		},
		Timestamp: time.Now().UTC(),
	})
	sess.Findings.LiveHosts = []string{"http://app.example.com"}
	sess.Finish(session.StatusComplete, "STOPPED_BY_AI", "")

	var buf bytes.Buffer
	RenderSession(&buf, sess, false)

	out := buf.String()
	for _, want := range []string{"Session " + sess.ID, "httpx -l hosts.txt", "one live host", "Live hosts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
