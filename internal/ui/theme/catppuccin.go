// Package theme holds the Catppuccin Mocha colours and the shared styles of
// the timer screens.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Pink     = lipgloss.Color("#f5c2e7")
)

var (
	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)

	// Hot marks live counters and the active tab.
	Hot = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	// Warn is used for errors and contractions under five minutes apart.
	Warn = lipgloss.NewStyle().Foreground(Red)

	// Big renders the running clock.
	Big = lipgloss.NewStyle().Foreground(Pink).Bold(true).Padding(0, 1)

	// Pulse stands in for a vibration in the status bar.
	Pulse = lipgloss.NewStyle().Foreground(Base).Background(Pink).Bold(true)
)
