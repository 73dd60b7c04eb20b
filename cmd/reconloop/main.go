// Package main is the entry point for the reconloop CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/openclaw/reconloop/internal/config"
	"github.com/openclaw/reconloop/internal/display"
	"github.com/openclaw/reconloop/internal/executor"
	"github.com/openclaw/reconloop/internal/intelligence"
	"github.com/openclaw/reconloop/internal/llm"
	"github.com/openclaw/reconloop/internal/logging"
	"github.com/openclaw/reconloop/internal/methodology"
	"github.com/openclaw/reconloop/internal/runner"
	"github.com/openclaw/reconloop/internal/session"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env for API keys; existing env vars take priority.
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("reconloop"),
		kong.Description("Autonomous reconnaissance loop: an LLM proposes each scan command, the loop runs it, analyzes the output, and accumulates findings."),
		kong.UsageOnError(),
		kongVars(),
	)
	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Run executes a scan session.
func (r *RunCmd) Run(cli *CLI) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New()
	if cli.Verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// Tee log lines into the session log alongside stderr.
	logFile, err := os.OpenFile(filepath.Join(cfg.Output.Dir, "reconloop.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(io.MultiWriter(os.Stderr, logFile))

	phases := methodology.Load(cfg.MethodologyFile)

	provider, err := llm.NewProvider(llm.FantasyConfig{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.GetAPIKey(),
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("creating model provider: %w", err)
	}

	store, err := session.NewStore(cfg.Output.SessionStore, cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	history, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("opening history log: %w", err)
	}
	if history != nil {
		defer history.Close()
	}

	client := intelligence.NewClient(provider, cfg.Safety.MaxWordlistSize, cfg.Safety.ForbiddenWordlists, logger)
	run := runner.New(cfg.CommandTimeout(), cfg.ExtraPaths, logger)
	console := display.NewConsole(os.Stdout)
	console.Banner(cfg.Target, cfg.LLM.Model, cfg.Limits.MaxSteps)

	// SIGINT/SIGTERM cancel the loop; the current step's partial
	// results are discarded and the session is saved as interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := executor.New(cfg, client, run, store, history, phases, logger, console)
	_, err = orch.Run(ctx)
	return err
}

// openHistory opens the detailed step log, or returns nil when full
// output persistence is disabled.
func openHistory(cfg *config.Config) (*session.HistoryLog, error) {
	if !cfg.Output.SaveFullOutput {
		return nil, nil
	}
	return session.OpenHistoryLog(filepath.Join(cfg.Output.Dir, "history.log"))
}

// loadConfig resolves the config file and applies flag overrides.
func (r *RunCmd) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if r.Config != "" {
		cfg, err = config.LoadFile(r.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if r.Target != "" {
		cfg.Target = r.Target
	}
	if r.Methodology != "" {
		cfg.MethodologyFile = r.Methodology
	}
	if r.Model != "" {
		cfg.LLM.Model = r.Model
	}
	if r.MaxSteps > 0 {
		cfg.Limits.MaxSteps = r.MaxSteps
	}
	if r.Output != "" {
		cfg.Output.Dir = r.Output
	}
	if r.Store != "" {
		cfg.Output.SessionStore = r.Store
	}
	return cfg, nil
}

// Run lists models known to the catalog.
func (m *ModelsCmd) Run(cli *CLI) error {
	models, err := llm.ListAllModels(context.Background())
	if err != nil {
		return fmt.Errorf("fetching model catalog: %w", err)
	}

	for _, mi := range models {
		if m.Provider != "" && !strings.EqualFold(mi.Provider, m.Provider) {
			continue
		}
		fmt.Printf("%-12s %-40s ctx=%-8d $%.2f/$%.2f per 1M\n",
			mi.Provider, mi.ID, mi.ContextWindow, mi.CostPer1MIn, mi.CostPer1MOut)
	}
	return nil
}

// Run renders a persisted session.
func (r *ReplayCmd) Run(cli *CLI) error {
	if r.Follow {
		if info, err := os.Stat(r.Session); err != nil || info.IsDir() {
			return fmt.Errorf("--follow requires a session file path")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return display.FollowSession(ctx, os.Stdout, r.Session, r.Verbose)
	}

	sess, err := r.loadSession()
	if err != nil {
		return err
	}
	display.RenderSession(os.Stdout, sess, r.Verbose)
	return nil
}

func (r *ReplayCmd) loadSession() (*session.Session, error) {
	// A path to a session JSON file takes priority.
	if info, err := os.Stat(r.Session); err == nil && !info.IsDir() {
		data, err := os.ReadFile(r.Session)
		if err != nil {
			return nil, err
		}
		var sess session.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return nil, fmt.Errorf("parsing session file: %w", err)
		}
		return &sess, nil
	}

	// Otherwise treat it as a session ID in the store directory.
	dir := r.Dir
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dir = cfg.Output.Dir
	}
	store := session.NewFileStore(dir)
	sess, err := store.Load(r.Session)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", r.Session, err)
	}
	return sess, nil
}

// Run prints version information.
func (v *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("reconloop version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
