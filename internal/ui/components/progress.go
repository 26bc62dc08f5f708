package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with an optional caption
// such as "120 / 300 answered".
type ProgressBar struct {
	Label    string
	Fraction float64
	Caption  string
	Width    int
}

// NewProgressBar creates a new progress bar. fraction is clamped to [0, 1].
func NewProgressBar(label string, fraction float64, caption string, width int) ProgressBar {
	return ProgressBar{
		Label:    label,
		Fraction: fraction,
		Caption:  caption,
		Width:    width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	caption := ""
	if p.Caption != "" {
		caption = "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Caption)
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(caption)
	if barWidth < 4 {
		barWidth = 4
	}

	frac := p.Fraction
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(float64(barWidth) * frac)
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	return result + caption
}
