package home

import (
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/ui/theme"
)

const titleFull = ` ███████╗██╗███╗   ███╗██╗██╗     ██████╗
 ██╔════╝██║████╗ ████║██║██║     ██╔══██╗
 ███████╗██║██╔████╔██║██║██║     ██████╔╝
 ╚════██║██║██║╚██╔╝██║██║██║     ██╔══██╗
 ███████║██║██║ ╚═╝ ██║██║███████╗██║  ██║
 ╚══════╝╚═╝╚═╝     ╚═╝╚═╝╚══════╝╚═╝  ╚═╝`

const titleCompact = "S · I · M · I · L · R"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderFrame wraps content in a border centered within the given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
