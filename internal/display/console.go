package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/openclaw/reconloop/internal/executor"
	"github.com/openclaw/reconloop/internal/intelligence"
)

const (
	outputPreviewLines = 15
	wrapWidth          = 78
)

// Console renders loop progress. It implements executor.Observer and
// is only ever called from the loop's single control thread.
type Console struct {
	w io.Writer
}

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Banner prints the session header before the loop starts.
func (c *Console) Banner(target, model string, maxSteps int) {
	fmt.Fprintln(c.w, divider)
	fmt.Fprintln(c.w, titleStyle.Render("reconloop"))
	fmt.Fprintf(c.w, "%s %s\n", labelStyle.Render("Target:"), valueStyle.Render(target))
	fmt.Fprintf(c.w, "%s %s\n", labelStyle.Render("Model:"), valueStyle.Render(model))
	fmt.Fprintf(c.w, "%s %s\n", labelStyle.Render("Max steps:"), valueStyle.Render(fmt.Sprintf("%d", maxSteps)))
	fmt.Fprintln(c.w, divider)
}

func (c *Console) StepStart(step int, phase string) {
	fmt.Fprintln(c.w)
	fmt.Fprintf(c.w, "%s %s\n",
		titleStyle.Render(fmt.Sprintf("Step %d", step)),
		phaseStyle.Render("["+phase+"]"))
}

func (c *Console) Decision(d *intelligence.Decision) {
	if d.Reasoning != "" {
		for _, line := range strings.Split(wordwrap.String(d.Reasoning, wrapWidth), "\n") {
			fmt.Fprintf(c.w, "  %s\n", reasoningStyle.Render(line))
		}
	}
	if d.Stop || d.Command == "" {
		if d.Error != "" {
			fmt.Fprintf(c.w, "  %s %s\n", errorStyle.Render("stopped:"), d.Error)
		} else {
			fmt.Fprintf(c.w, "  %s\n", warnStyle.Render("model requested stop"))
		}
		return
	}
	fmt.Fprintf(c.w, "  %s %s\n", labelStyle.Render("$"), commandStyle.Render(d.Command))
}

func (c *Console) CommandResult(output string, success bool, consecutiveFailures, maxFailures int) {
	if success {
		fmt.Fprintf(c.w, "  %s\n", successStyle.Render("✓ command succeeded"))
	} else {
		fmt.Fprintf(c.w, "  %s %s\n",
			errorStyle.Render("✗ command failed"),
			dimStyle.Render(fmt.Sprintf("(%d/%d consecutive)", consecutiveFailures, maxFailures)))
	}
	for _, line := range previewLines(output, outputPreviewLines) {
		fmt.Fprintf(c.w, "    %s\n", dimStyle.Render(line))
	}
}

func (c *Console) Analysis(a *intelligence.Analysis, _ string) {
	fmt.Fprintf(c.w, "  %s %s\n",
		labelStyle.Render("Risk:"),
		riskStyle(a.RiskLevel).Render(a.RiskLevel))
	if a.Summary != "" {
		for _, line := range strings.Split(wordwrap.String(a.Summary, wrapWidth), "\n") {
			fmt.Fprintf(c.w, "  %s\n", valueStyle.Render(line))
		}
	}
	for _, v := range a.Vulnerabilities {
		fmt.Fprintf(c.w, "  %s %s\n", vulnStyle.Render("!"), v)
	}
	for _, f := range a.Findings {
		fmt.Fprintf(c.w, "  %s %s\n", successStyle.Render("•"), f)
	}
}

func (c *Console) SessionEnd(sum *executor.Summary) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, divider)
	fmt.Fprintln(c.w, titleStyle.Render("Session complete"))
	rows := []struct{ label, value string }{
		{"Session", sum.SessionID},
		{"Target", sum.Target},
		{"State", string(sum.State)},
		{"Steps", fmt.Sprintf("%d", sum.Steps)},
		{"Duration", sum.Duration.Round(time.Second).String()},
		{"Vulnerabilities", fmt.Sprintf("%d", sum.Vulnerabilities)},
		{"Live hosts", fmt.Sprintf("%d", sum.LiveHosts)},
		{"Subdomains", fmt.Sprintf("%d", sum.Subdomains)},
	}
	for _, r := range rows {
		fmt.Fprintf(c.w, "%s %s\n",
			labelStyle.Render(fmt.Sprintf("%-16s", r.label)),
			valueStyle.Render(r.value))
	}
	if sum.StopError != "" {
		fmt.Fprintf(c.w, "%s %s\n", errorStyle.Render("Stop reason:"), sum.StopError)
	}
	fmt.Fprintln(c.w, divider)
}

// previewLines returns up to max non-empty trailing-trimmed lines,
// with a marker when output was elided.
func previewLines(output string, max int) []string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) <= max {
		return lines
	}
	out := append([]string(nil), lines[:max]...)
	out = append(out, fmt.Sprintf("... (%d more lines)", len(lines)-max))
	return out
}
