package display

import (
	"fmt"
	"io"
	"time"

	"github.com/openclaw/reconloop/internal/session"
)

// RenderSession prints a persisted session step by step. verbose
// includes the full command output instead of a short preview.
func RenderSession(w io.Writer, sess *session.Session, verbose bool) {
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, titleStyle.Render("Session "+sess.ID))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Target:"), valueStyle.Render(sess.Target))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Status:"), renderStatus(sess.Status))
	if sess.State != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("State:"), valueStyle.Render(sess.State))
	}
	if sess.Error != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Error:"), errorStyle.Render(sess.Error))
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Started:"), dimStyle.Render(sess.CreatedAt.Format(time.RFC3339)))
	fmt.Fprintln(w, divider)

	for _, step := range sess.Steps {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s %s\n",
			titleStyle.Render(fmt.Sprintf("Step %d", step.Step)),
			phaseStyle.Render("["+step.Phase+"]"),
			dimStyle.Render(step.Timestamp.Format("15:04:05")))
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("$"), commandStyle.Render(step.Command))
		if step.Success {
			fmt.Fprintf(w, "  %s\n", successStyle.Render("✓ succeeded"))
		} else {
			fmt.Fprintf(w, "  %s\n", errorStyle.Render("✗ failed"))
		}

		if verbose {
			for _, line := range previewLines(step.Output, 1<<30) {
				fmt.Fprintf(w, "    %s\n", dimStyle.Render(line))
			}
		} else {
			for _, line := range previewLines(step.Output, outputPreviewLines) {
				fmt.Fprintf(w, "    %s\n", dimStyle.Render(line))
			}
		}

		if a := step.Analysis; a != nil {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render("Risk:"), riskStyle(a.RiskLevel).Render(a.RiskLevel))
			if a.Summary != "" {
				fmt.Fprintf(w, "  %s\n", valueStyle.Render(a.Summary))
			}
			for _, v := range a.Vulnerabilities {
				fmt.Fprintf(w, "  %s %s\n", vulnStyle.Render("!"), v)
			}
			for _, f := range a.Findings {
				fmt.Fprintf(w, "  %s %s\n", successStyle.Render("•"), f)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, divider)
	fmt.Fprintln(w, titleStyle.Render("Findings"))
	renderList(w, "Vulnerabilities", sess.Findings.Vulnerabilities, vulnStyle.Render("!"))
	renderList(w, "Interesting", sess.Findings.Findings, successStyle.Render("•"))
	renderList(w, "Live hosts", sess.Findings.LiveHosts, labelStyle.Render("-"))
	renderList(w, "Subdomains", sess.Findings.Subdomains, labelStyle.Render("-"))
	fmt.Fprintln(w, divider)
}

func renderStatus(status string) string {
	switch status {
	case session.StatusComplete:
		return successStyle.Render(status)
	case session.StatusFailed:
		return errorStyle.Render(status)
	case session.StatusInterrupted:
		return warnStyle.Render(status)
	default:
		return valueStyle.Render(status)
	}
}

func renderList(w io.Writer, label string, items []string, bullet string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", labelStyle.Render(label+":"))
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", bullet, item)
	}
}
