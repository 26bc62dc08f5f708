package rapidfire

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/ui/theme"
)

// templatePanel picks the prompt template questions are generated from.
// Row 0 is "any template"; row i is templates[i-1].
type templatePanel struct {
	open      bool
	loading   bool
	err       error
	templates []api.PromptTemplate
	selected  int
}

func (p *templatePanel) loaded(ts []api.PromptTemplate, err error, cur settings.Settings) {
	p.loading = false
	p.err = err
	p.templates = ts
	p.selected = 0
	for i, t := range ts {
		if t.ID == cur.SelectedPromptTemplateID {
			p.selected = i + 1
			break
		}
	}
}

// choice returns the template id of the highlighted row, "" for any.
func (p *templatePanel) choice() string {
	if p.selected <= 0 || p.selected > len(p.templates) {
		return ""
	}
	return p.templates[p.selected-1].ID
}

func (s *RapidFireScreen) openPanel() tea.Cmd {
	if s.deps.Templates == nil {
		return nil
	}
	s.panel = templatePanel{open: true, loading: true}
	src, ctx := s.deps.Templates, s.ctx
	load := func() tea.Msg {
		ts, err := src.Get(ctx)
		return templatesLoadedMsg{Templates: ts, Err: err}
	}
	return tea.Batch(load, s.spin())
}

func (s *RapidFireScreen) handlePanelKey(key string) tea.Cmd {
	switch key {
	case "esc", "p":
		s.panel.open = false
	case "up", "k":
		if s.panel.selected > 0 {
			s.panel.selected--
		}
	case "down", "j":
		if s.panel.selected < len(s.panel.templates) {
			s.panel.selected++
		}
	case "enter":
		if s.panel.loading || s.panel.err != nil {
			return nil
		}
		s.panel.open = false
		return s.applySettings(s.engine.Settings().WithTemplate(s.panel.choice()))
	}
	return nil
}

func (s *RapidFireScreen) renderPanel(width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Select prompt"))
	b.WriteString("\n\n")

	switch {
	case s.panel.loading:
		b.WriteString(theme.Subtitle.Width(width).Render(spinnerFrame(s.frame) + " Loading templates..."))
		return b.String()
	case s.panel.err != nil:
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("Could not load templates: %v", s.panel.err)))
		return b.String()
	}

	rows := make([]string, 0, len(s.panel.templates)+1)
	rows = append(rows, "Any template")
	for _, t := range s.panel.templates {
		rows = append(rows, t.Text)
	}

	maxW := min(width-8, 70)
	var list strings.Builder
	for i, r := range rows {
		line := truncate(r, maxW-4)
		if i == s.panel.selected {
			list.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			list.WriteString(theme.Unselected.Render("  " + line))
		}
		list.WriteString("\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, list.String()))
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}
