package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/ui/theme"
)

// OptionChosenMsg reports the option picked in an OptionList.
type OptionChosenMsg struct {
	Index int
}

// OptionList is a vertical list of answer options. Options 1-9 can also be
// picked with their number key.
type OptionList struct {
	Options  []string
	Selected int
	Disabled bool
	// Chosen is the index marked as picked, or -1.
	Chosen int
}

// NewOptionList creates an option list with the first option highlighted.
func NewOptionList(options []string) OptionList {
	return OptionList{
		Options: options,
		Chosen:  -1,
	}
}

// Update handles keyboard navigation. Enter or a number key emits an
// OptionChosenMsg; the list itself does not lock until the host disables it.
func (o OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if o.Disabled || len(o.Options) == 0 {
		return o, nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return o, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if o.Selected > 0 {
			o.Selected--
		}
		return o, nil
	case "down", "j":
		if o.Selected < len(o.Options)-1 {
			o.Selected++
		}
		return o, nil
	case "enter":
		return o, chooseCmd(o.Selected)
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		idx := int(key[0] - '1')
		if idx < len(o.Options) {
			o.Selected = idx
			return o, chooseCmd(idx)
		}
	}
	return o, nil
}

func chooseCmd(idx int) tea.Cmd {
	return func() tea.Msg { return OptionChosenMsg{Index: idx} }
}

// View renders the options.
func (o OptionList) View() string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Selected && !o.Disabled {
			prefix = "▸ "
		}
		label := fmt.Sprintf("%d", i+1)
		if i >= 9 {
			label = " "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		switch {
		case i == o.Chosen:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(line))
		case o.Disabled:
			b.WriteString(theme.Disabled.Render(line))
		case i == o.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
