package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/store"
	"github.com/similr/similr/internal/ui/layout"
	"github.com/similr/similr/internal/ui/theme"
)

// pageSize is how many recent answers the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Answers []store.AnswerRecord
	Total   int
	Err     error
}

// HistoryScreen lists the answers submitted from this machine.
type HistoryScreen struct {
	log      screens.AnswerHistory
	answers  []store.AnswerRecord
	total    int
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(log screens.AnswerHistory) *HistoryScreen {
	return &HistoryScreen{
		log:      log,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	log := s.log
	return func() tea.Msg {
		ctx := context.Background()

		answers, err := log.Recent(ctx, pageSize)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		total, err := log.Count(ctx)
		if err != nil {
			return historyLoadedMsg{Answers: answers, Total: len(answers)}
		}
		return historyLoadedMsg{Answers: answers, Total: total}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.answers = msg.Answers
			s.total = msg.Total
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.answers)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.answers) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No answers yet. Start a Rapid Fire round!")
	}

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("%d answers on this device, latest %d shown", s.total, len(s.answers)))))
	b.WriteString("\n\n")

	// Only the rows that fit are rendered, scrolled to keep the selection visible.
	rows := max(height-4, 1)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}

	for i := start; i < len(s.answers) && i < start+rows; i++ {
		a := s.answers[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-14s  %s",
			prefix, a.CreatedAt.Local().Format("Jan 02 15:04"), a.QuestionType, a.Choice)

		style := lipgloss.NewStyle().Foreground(typeColor(a.QuestionType))
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    #%d  question %s", a.Sequence, a.QuestionID)
			if a.PromptTemplateID != "" {
				detail += "  prompt template " + a.PromptTemplateID
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func typeColor(questionType string) color.Color {
	switch questionType {
	case "standard":
		return theme.Text
	case "profile_option":
		return theme.Secondary
	default:
		return theme.TextDim
	}
}
