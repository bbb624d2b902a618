package tui

import "github.com/charmbracelet/lipgloss"

// ASCII borders render the same in every terminal font.
var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

type theme struct {
	card, cardActive lipgloss.Style
	vendor, mpn      lipgloss.Style
	score, meta      lipgloss.Style
	link             lipgloss.Style
	header, status   lipgloss.Style
}

func newTheme() theme {
	card := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1)

	return theme{
		card: card,
		cardActive: card.Copy().
			BorderForeground(lipgloss.Color("214")).
			Background(lipgloss.Color("237")),
		vendor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110")),
		mpn:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("254")),
		score:  lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		meta:   lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("247")),
		link:   lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("248")),
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).MarginBottom(1),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).MarginTop(1),
	}
}
