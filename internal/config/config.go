// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the scan loop configuration. Values are resolved
// in order: environment variables > TOML file > defaults.
type Config struct {
	Target          string       `toml:"target"`
	MethodologyFile string       `toml:"methodology_file"`
	Tools           []string     `toml:"tools"`
	ExtraPaths      []string     `toml:"extra_paths"`
	LLM             LLMConfig    `toml:"llm"`
	Limits          LimitsConfig `toml:"limits"`
	Output          OutputConfig `toml:"output"`
	Safety          SafetyConfig `toml:"safety"`
}

// LLMConfig contains LLM provider settings.
type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens"`
}

// LimitsConfig bounds the control loop.
type LimitsConfig struct {
	MaxSteps               int      `toml:"max_steps"`
	MaxConsecutiveFailures int      `toml:"max_consecutive_failures"`
	CommandTimeout         duration `toml:"command_timeout"`
	MaxHistoryLines        int      `toml:"max_history_lines"`
	MaxOutputChars         int      `toml:"max_output_chars"`
}

// OutputConfig controls session persistence.
type OutputConfig struct {
	Dir            string `toml:"dir"`
	SaveFullOutput bool   `toml:"save_full_output"`
	SessionStore   string `toml:"session_store"` // "file" or "sqlite"
}

// SafetyConfig carries advisory limits surfaced into the model prompt.
// They are not mechanically enforced.
type SafetyConfig struct {
	MaxWordlistSize    int      `toml:"max_wordlist_size"`
	ForbiddenWordlists []string `toml:"forbidden_wordlists"`
}

// duration lets TOML files carry values like "600s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// defaultTools is the scanning tool inventory surfaced to the model.
var defaultTools = []string{
	"nmap", "dirb", "sqlmap", "gobuster", "nikto",
	"ffuf", "nuclei", "feroxbuster", "whatweb", "wpscan",
	"subfinder", "assetfinder", "findomain", "amass", "github-subdomains",
	"alterx", "dnsx", "asnmap", "httpx-toolkit", "gowitness",
	"katana", "hakrawler", "gau", "urlfinder", "urldedupe",
	"gf", "arjun", "dirsearch",
}

// New creates a new config with defaults.
func New() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Target:          "scanme.nmap.org",
		MethodologyFile: "methodology.txt",
		Tools:           append([]string(nil), defaultTools...),
		ExtraPaths:      []string{filepath.Join(home, "go", "bin")},
		LLM: LLMConfig{
			Model:     "gpt-4o",
			MaxTokens: 4096,
		},
		Limits: LimitsConfig{
			MaxSteps:               50,
			MaxConsecutiveFailures: 5,
			CommandTimeout:         duration{600 * time.Second},
			MaxHistoryLines:        15,
			MaxOutputChars:         500,
		},
		Output: OutputConfig{
			Dir:            "./reconloop-out",
			SaveFullOutput: true,
			SessionStore:   "file",
		},
		Safety: SafetyConfig{
			MaxWordlistSize: 5000,
			ForbiddenWordlists: []string{
				"/usr/share/wordlists/seclists/Discovery/DNS/subdomains-top1million-110000.txt",
			},
		},
	}
}

// LoadFile loads configuration from a TOML file over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Load resolves configuration from reconloop.toml in the current
// directory when present, otherwise from defaults, then applies
// environment overrides.
func Load() (*Config, error) {
	if _, err := os.Stat("reconloop.toml"); err == nil {
		return LoadFile("reconloop.toml")
	}
	cfg := New()
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays recognized environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("TARGET"); v != "" {
		c.Target = v
	}
	if v := os.Getenv("METHODOLOGY_FILE"); v != "" {
		c.MethodologyFile = v
	}
	if v := os.Getenv("RECONLOOP_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("RECONLOOP_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("RECONLOOP_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v, ok := envInt("MAX_STEPS"); ok {
		c.Limits.MaxSteps = v
	}
	if v, ok := envInt("MAX_CONSECUTIVE_FAILURES"); ok {
		c.Limits.MaxConsecutiveFailures = v
	}
	if v := os.Getenv("COMMAND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Limits.CommandTimeout = duration{d}
		} else if secs, err := strconv.Atoi(v); err == nil {
			c.Limits.CommandTimeout = duration{time.Duration(secs) * time.Second}
		}
	}
	if v, ok := envInt("MAX_HISTORY_LINES"); ok {
		c.Limits.MaxHistoryLines = v
	}
	if v, ok := envInt("MAX_OUTPUT_CHARS"); ok {
		c.Limits.MaxOutputChars = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("SAVE_FULL_OUTPUT"); v != "" {
		c.Output.SaveFullOutput = v == "true" || v == "1"
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		c.Output.SessionStore = v
	}
	if v, ok := envInt("MAX_WORDLIST_SIZE"); ok {
		c.Safety.MaxWordlistSize = v
	}
	if v := os.Getenv("FORBIDDEN_WORDLISTS"); v != "" {
		var paths []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			c.Safety.ForbiddenWordlists = paths
		}
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CommandTimeout returns the per-command execution bound.
func (c *Config) CommandTimeout() time.Duration {
	return c.Limits.CommandTimeout.Duration
}

// GetAPIKey returns the provider credential. RECONLOOP_API_KEY wins,
// then the configured env var, then the provider's conventional one.
func (c *Config) GetAPIKey() string {
	if v := os.Getenv("RECONLOOP_API_KEY"); v != "" {
		return v
	}
	envVar := c.LLM.APIKeyEnv
	if envVar == "" {
		envVar = DefaultAPIKeyEnv(c.LLM.Provider)
	}
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

// DefaultAPIKeyEnv returns the default environment variable name for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai", "":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	case "mistral":
		return "MISTRAL_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}

// Validate checks configuration that must be right at startup. A
// missing provider credential is fatal.
func (c *Config) Validate() error {
	if c.GetAPIKey() == "" {
		return fmt.Errorf("no API key set: export RECONLOOP_API_KEY or %s", DefaultAPIKeyEnv(c.LLM.Provider))
	}
	if c.Limits.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive")
	}
	if c.Limits.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max_consecutive_failures must be positive")
	}
	return nil
}
