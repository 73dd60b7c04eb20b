package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	if cfg.Target != "scanme.nmap.org" {
		t.Errorf("unexpected default target: %s", cfg.Target)
	}
	if cfg.Limits.MaxSteps != 50 {
		t.Errorf("expected max_steps 50, got %d", cfg.Limits.MaxSteps)
	}
	if cfg.Limits.MaxConsecutiveFailures != 5 {
		t.Errorf("expected max_consecutive_failures 5, got %d", cfg.Limits.MaxConsecutiveFailures)
	}
	if cfg.CommandTimeout() != 600*time.Second {
		t.Errorf("expected 600s timeout, got %s", cfg.CommandTimeout())
	}
	if cfg.Limits.MaxHistoryLines != 15 || cfg.Limits.MaxOutputChars != 500 {
		t.Error("history window defaults are wrong")
	}
	if len(cfg.Tools) == 0 {
		t.Error("default tool inventory should not be empty")
	}
	if cfg.Safety.MaxWordlistSize != 5000 {
		t.Errorf("expected wordlist ceiling 5000, got %d", cfg.Safety.MaxWordlistSize)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconloop.toml")
	content := `
target = "example.com"

[llm]
provider = "anthropic"
model = "claude-sonnet-4-20250514"

[limits]
max_steps = 10
command_timeout = "30s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Target != "example.com" {
		t.Errorf("expected target from file, got %s", cfg.Target)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %s", cfg.LLM.Provider)
	}
	if cfg.Limits.MaxSteps != 10 {
		t.Errorf("expected max_steps 10, got %d", cfg.Limits.MaxSteps)
	}
	if cfg.CommandTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.CommandTimeout())
	}
	// Unset fields keep defaults
	if cfg.Limits.MaxHistoryLines != 15 {
		t.Error("unset fields should keep defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TARGET", "env.example.com")
	t.Setenv("MAX_STEPS", "7")
	t.Setenv("COMMAND_TIMEOUT", "120")
	t.Setenv("SAVE_FULL_OUTPUT", "false")
	t.Setenv("FORBIDDEN_WORDLISTS", "/opt/lists/huge.txt, /opt/lists/mega.txt")

	cfg := New()
	cfg.applyEnv()

	if cfg.Target != "env.example.com" {
		t.Errorf("env target not applied: %s", cfg.Target)
	}
	if cfg.Limits.MaxSteps != 7 {
		t.Errorf("env max_steps not applied: %d", cfg.Limits.MaxSteps)
	}
	if cfg.CommandTimeout() != 120*time.Second {
		t.Errorf("bare-seconds timeout not applied: %s", cfg.CommandTimeout())
	}
	if cfg.Output.SaveFullOutput {
		t.Error("SAVE_FULL_OUTPUT=false not applied")
	}
	want := []string{"/opt/lists/huge.txt", "/opt/lists/mega.txt"}
	if !reflect.DeepEqual(cfg.Safety.ForbiddenWordlists, want) {
		t.Errorf("FORBIDDEN_WORDLISTS not applied: %v", cfg.Safety.ForbiddenWordlists)
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Setenv("RECONLOOP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := New()
	if got := cfg.GetAPIKey(); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	if got := cfg.GetAPIKey(); got != "sk-openai" {
		t.Errorf("expected provider default env key, got %q", got)
	}

	// RECONLOOP_API_KEY wins over provider env
	t.Setenv("RECONLOOP_API_KEY", "sk-direct")
	if got := cfg.GetAPIKey(); got != "sk-direct" {
		t.Errorf("expected RECONLOOP_API_KEY to win, got %q", got)
	}

	cfg.LLM.Provider = "anthropic"
	t.Setenv("RECONLOOP_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	if got := cfg.GetAPIKey(); got != "sk-ant" {
		t.Errorf("expected anthropic key, got %q", got)
	}
}

func TestValidate_MissingKeyIsFatal(t *testing.T) {
	t.Setenv("RECONLOOP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := New()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing credential")
	}

	t.Setenv("RECONLOOP_API_KEY", "sk-test")
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
