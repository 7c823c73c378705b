package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#51CF66"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FCC419"))
	BlueSky = lipgloss.NewStyle().Foreground(lipgloss.Color("#74C0FC"))
	Gray    = lipgloss.NewStyle().Foreground(lipgloss.Color("#868E96"))
	Info    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#74C0FC"))

	// BoxStyle frames the banner printed at the start and end of a generation run.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#74C0FC")).
			Padding(0, 1)
)
