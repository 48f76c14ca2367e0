package ui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by the browse screen.
type Styles struct {
	Header     lipgloss.Style
	Badge      lipgloss.Style
	Filters    lipgloss.Style
	Card       lipgloss.Style
	CardActive lipgloss.Style
	Title      lipgloss.Style
	Price      lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style
	Overlay    lipgloss.Style
	Footer     lipgloss.Style
}

const cardWidth = 28

var (
	accent = lipgloss.Color("#2f855a")
	subtle = lipgloss.Color("#718096")
	danger = lipgloss.Color("#c53030")
)

func DefaultStyles() Styles {
	card := lipgloss.NewStyle().
		Width(cardWidth).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(subtle)

	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Badge:      lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(accent),
		Filters:    lipgloss.NewStyle().Foreground(subtle),
		Card:       card,
		CardActive: card.BorderForeground(accent),
		Title:      lipgloss.NewStyle().Bold(true),
		Price:      lipgloss.NewStyle().Foreground(accent),
		Muted:      lipgloss.NewStyle().Foreground(subtle),
		Error:      lipgloss.NewStyle().Foreground(danger),
		Notice:     lipgloss.NewStyle().Foreground(accent).Italic(true),
		Overlay: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent),
		Footer: lipgloss.NewStyle().Foreground(subtle),
	}
}
