package cli

import "github.com/charmbracelet/lipgloss"

// Styles for the final status line. lipgloss drops the colors when the
// output is not a terminal, so piped and CI output stays plain text.
var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#73F59F"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FECA57"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#696969"))
)
