// Package display renders loop progress and session replays to a
// terminal.
package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - timestamps, metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	// Phase banners - Cyan
	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	// Proposed commands - Blue
	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	// Vulnerabilities - Orange, louder than plain findings
	vulnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))

	divider = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("━", 60))
)

// riskStyle picks a color for the analyst's risk level.
func riskStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "critical", "high":
		return errorStyle
	case "medium":
		return warnStyle
	case "low":
		return successStyle
	default:
		return dimStyle
	}
}
