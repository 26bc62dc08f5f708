package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/ui/theme"
)

const bannerArt = `
 ███████╗██╗███╗   ███╗██╗██╗     ██████╗
 ██╔════╝██║████╗ ████║██║██║     ██╔══██╗
 ███████╗██║██╔████╔██║██║██║     ██████╔╝
 ╚════██║██║██║╚██╔╝██║██║██║     ██╔══██╗
 ███████║██║██║ ╚═╝ ██║██║███████╗██║  ██║
 ╚══════╝╚═╝╚═╝     ╚═╝╚═╝╚══════╝╚═╝  ╚═╝`

const bannerCompact = "S I M I L R"

// RenderBanner returns the SIMILR banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 46 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 46 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
