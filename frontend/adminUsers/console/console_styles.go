package console

import "github.com/charmbracelet/lipgloss"

var (
	primary     = lipgloss.Color("#2563eb")
	muted       = lipgloss.Color("#6b7280")
	destructive = lipgloss.Color("#e53935")
	success     = lipgloss.Color("#8BC34A")
	border      = lipgloss.Color("#2a3850")
)

// Styles holds the lipgloss styles used by the console screen.
type Styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Panel    lipgloss.Style
	Modal    lipgloss.Style
	Input    lipgloss.Style
	Focused  lipgloss.Style
	Disabled lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Error:    lipgloss.NewStyle().Foreground(destructive),
		Success:  lipgloss.NewStyle().Foreground(success),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Modal:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(primary).Padding(1, 2),
		Input:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Focused:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(primary).Padding(0, 1),
		Disabled: lipgloss.NewStyle().Foreground(muted).Faint(true),
	}
}
