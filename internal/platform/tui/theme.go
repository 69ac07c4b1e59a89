package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme contains the visual styles for the play view and menus.
type Theme struct {
	// Header styles
	Title      lipgloss.Style
	HUDLabel   lipgloss.Style
	HUDValue   lipgloss.Style
	HUDDivider lipgloss.Style

	// Status line styles
	Status     lipgloss.Style
	StatusWarn lipgloss.Style
	StatusWin  lipgloss.Style
	Prompt     lipgloss.Style

	Help lipgloss.Style

	// Level picker styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
	MenuSolved      lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		HUDLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		HUDValue:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		HUDDivider: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusWarn: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		StatusWin:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		Prompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		MenuTitle:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		MenuSolved:      lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
}
