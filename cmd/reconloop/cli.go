// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Run     RunCmd     `cmd:"" default:"withargs" help:"Run a scan session against a target"`
	Models  ModelsCmd  `cmd:"" help:"List models available through the configured providers"`
	Replay  ReplayCmd  `cmd:"" help:"Render a persisted session"`
	Version VersionCmd `cmd:"" help:"Show version information"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// RunCmd runs the scan loop.
type RunCmd struct {
	Target      string `arg:"" optional:"" help:"Target host or domain (overrides config)"`
	Config      string `short:"c" help:"Config file path (default: reconloop.toml)"`
	Methodology string `short:"m" help:"Methodology file path"`
	Model       string `help:"Model ID (overrides config)"`
	MaxSteps    int    `help:"Maximum loop steps (overrides config)"`
	Output      string `short:"o" help:"Output directory"`
	Store       string `help:"Session store backend (file or sqlite)" enum:"file,sqlite,"`
}

// ModelsCmd lists known models from the catalog.
type ModelsCmd struct {
	Provider string `help:"Filter by provider name"`
}

// ReplayCmd renders a persisted session file.
type ReplayCmd struct {
	Session string `arg:"" help:"Session file path or session ID"`
	Dir     string `help:"Session directory to resolve IDs against"`
	Verbose bool   `help:"Show full command output"`
	Follow  bool   `short:"f" help:"Watch the session file and re-render on change"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
