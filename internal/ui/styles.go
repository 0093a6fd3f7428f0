package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Primary is the kiln ember used for headers and step arrows.
var (
	Primary      = lipgloss.Color("#EA580C")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
	ColorInfo    = lipgloss.Color("#06B6D4")
	ColorMuted   = lipgloss.Color("#6B7280")
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	CodeStyle   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)

	SuccessBadge = badge(ColorSuccess, "#000")
	WarningBadge = badge(ColorWarning, "#000")
	ErrorBadge   = badge(ColorError, "#FFF")
	InfoBadge    = badge(ColorInfo, "#000")
)

// badge is a bold one-word label on a solid background.
func badge(bg lipgloss.Color, fg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Background(bg).
		Padding(0, 1).
		Bold(true)
}
