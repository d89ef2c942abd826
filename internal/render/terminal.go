package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const minTerminalWidth = 20

// Terminal draws the visible face as a bordered block in the resolved colors.
// The face changes immediately; terminals have no flip animation.
func Terminal(p CardProps, width int) string {
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	label, text := Face(p)

	bg := lipgloss.Color(cssColor(p.Background, "#ffffff"))
	fg := lipgloss.Color(cssColor(p.Foreground, "#000000"))

	labelStyle := lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Faint(true)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fg).
		Background(bg).
		Foreground(fg).
		Bold(true).
		Padding(1, 2).
		Width(width - 2).
		Align(lipgloss.Center)

	body := strings.TrimSpace(text)
	return card.Render(labelStyle.Render(label) + "\n\n" + body)
}
