package cli

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	accentColor  = lipgloss.Color("#F59E0B")
	successColor = lipgloss.Color("#10B981")

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	columnTitleStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	unreadStyle = lipgloss.NewStyle().
			Bold(true)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	snoozeStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	doneStyle = lipgloss.NewStyle().
			Foreground(successColor)
)
