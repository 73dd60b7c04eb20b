package intelligence

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openclaw/reconloop/internal/llm"
)

func testContext() PromptContext {
	return PromptContext{
		Target: "example.com",
		Phase:  "reconnaissance",
		Phases: []string{"reconnaissance", "scanning", "exploitation"},
		Tools:  []string{"nmap", "subfinder"},
		Step:   1,
	}
}

func TestProposeCommand_ValidResponse(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse(`{"command": "subfinder -d example.com", "next_phase": "reconnaissance", "stop": false, "reasoning": "start passive"}`)

	client := NewClient(provider, 5000, nil, nil)
	d := client.ProposeCommand(context.Background(), testContext())

	if d.Command != "subfinder -d example.com" {
		t.Errorf("unexpected command: %q", d.Command)
	}
	if d.Error != "" {
		t.Errorf("unexpected error field: %q", d.Error)
	}

	req := provider.LastRequest()
	if req == nil || len(req.Messages) != 2 {
		t.Fatal("expected system + user messages")
	}
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "valid JSON") {
		t.Error("system prompt missing or malformed")
	}
	if !strings.Contains(req.Messages[1].Content, "TARGET: example.com") {
		t.Error("user prompt should carry the target")
	}
	if !strings.Contains(req.Messages[1].Content, "No history yet") {
		t.Error("empty history should use the first-command placeholder")
	}
}

func TestProposeCommand_RetriesThenInvalidJSON(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse("definitely not json")

	client := NewClient(provider, 5000, nil, nil)
	d := client.ProposeCommand(context.Background(), testContext())

	if !d.Stop {
		t.Error("error decision must stop")
	}
	if d.Error != "Invalid JSON format" {
		t.Errorf("expected 'Invalid JSON format', got %q", d.Error)
	}
	if provider.CallCount() != decisionRetries {
		t.Errorf("expected %d attempts, got %d", decisionRetries, provider.CallCount())
	}
}

func TestProposeCommand_RecoversOnSecondAttempt(t *testing.T) {
	provider := llm.NewMockProvider()
	calls := 0
	provider.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		calls++
		if calls == 1 {
			return &llm.ChatResponse{Content: "oops"}, nil
		}
		return &llm.ChatResponse{Content: `{"command": "nmap example.com", "stop": false}`}, nil
	}

	client := NewClient(provider, 5000, nil, nil)
	d := client.ProposeCommand(context.Background(), testContext())

	if d.Command != "nmap example.com" {
		t.Errorf("expected recovery on retry, got %+v", d)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestProposeCommand_TransportFailure(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetError(errors.New("connection refused"))

	client := NewClient(provider, 5000, nil, nil)
	d := client.ProposeCommand(context.Background(), testContext())

	if !d.Stop {
		t.Error("transport failure must produce a stop decision")
	}
	if d.Error != "Max retries exceeded" {
		t.Errorf("expected 'Max retries exceeded', got %q", d.Error)
	}
	if provider.CallCount() != decisionRetries {
		t.Errorf("expected %d attempts, got %d", decisionRetries, provider.CallCount())
	}
}

func TestProposeCommand_SystemPromptCarriesWordlistLimits(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse(`{"command": "x", "stop": false}`)

	client := NewClient(provider, 3000, []string{"/usr/share/wordlists/huge.txt"}, nil)
	client.ProposeCommand(context.Background(), testContext())

	system := provider.LastRequest().Messages[0].Content
	if !strings.Contains(system, "3000") {
		t.Error("system prompt should carry the wordlist ceiling")
	}
	if !strings.Contains(system, "/usr/share/wordlists/huge.txt") {
		t.Error("system prompt should name forbidden wordlists")
	}
}

func TestAnalyzeOutput_Valid(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse(`{"findings": ["port 80 open"], "vulnerabilities": [], "next_actions": ["enumerate web"], "risk_level": "medium", "summary": "web server found"}`)

	client := NewClient(provider, 5000, nil, nil)
	a := client.AnalyzeOutput(context.Background(), "nmap example.com", "80/tcp open http", "scanning")

	if a.Summary != "web server found" {
		t.Errorf("unexpected summary: %q", a.Summary)
	}

	prompt := provider.LastRequest().Messages[1].Content
	if !strings.Contains(prompt, "COMMAND: nmap example.com") {
		t.Error("analysis prompt should carry the command")
	}
}

func TestAnalyzeOutput_TruncatesTransmission(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetResponse(`{"summary": "ok"}`)

	client := NewClient(provider, 5000, nil, nil)
	long := strings.Repeat("x", 10000)
	client.AnalyzeOutput(context.Background(), "cmd", long, "scanning")

	prompt := provider.LastRequest().Messages[1].Content
	if strings.Contains(prompt, strings.Repeat("x", analysisOutputLimit+1)) {
		t.Error("transmitted output should be truncated")
	}
}

func TestAnalyzeOutput_FailureDegrades(t *testing.T) {
	provider := llm.NewMockProvider()
	provider.SetError(errors.New("boom"))

	client := NewClient(provider, 5000, nil, nil)
	a := client.AnalyzeOutput(context.Background(), "cmd", "output", "scanning")

	if a.Summary != "Analysis unavailable" {
		t.Errorf("expected degraded analysis, got %+v", a)
	}
}
