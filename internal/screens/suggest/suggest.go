// Package suggest lets the user propose a new prompt template.
package suggest

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/ui/components"
	"github.com/similr/similr/internal/ui/layout"
	"github.com/similr/similr/internal/ui/theme"
)

type suggestedMsg struct {
	Err error
}

// SuggestScreen collects and sends a prompt template suggestion.
type SuggestScreen struct {
	suggester screens.Suggester
	logger    *zap.Logger
	input     components.TextInput
	sending   bool
	sent      bool
	errMsg    string
}

var (
	_ screen.Screen          = (*SuggestScreen)(nil)
	_ screen.KeyHintProvider = (*SuggestScreen)(nil)
	_ screen.KeyCapturer     = (*SuggestScreen)(nil)
)

// New creates a SuggestScreen sending through deps.Suggester.
func New(deps screens.Deps) *SuggestScreen {
	return &SuggestScreen{
		suggester: deps.Suggester,
		logger:    deps.Log().Named("suggest"),
		input:     components.NewTextInput("Template", "Enter your prompt template suggestion", 500),
	}
}

func (s *SuggestScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *SuggestScreen) Title() string {
	return "Suggest a Prompt Template"
}

// CapturingKeys is true while the field is editable.
func (s *SuggestScreen) CapturingKeys() bool {
	return !s.sent
}

func (s *SuggestScreen) KeyHints() []layout.KeyHint {
	if s.sent {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *SuggestScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestedMsg:
		s.sending = false
		s.input.Disabled = false
		if msg.Err != nil {
			s.logger.Warn("suggest prompt template", zap.Error(msg.Err))
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		s.sent = true
		s.input.Blur()
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s, s.submit()
		}
		if s.sent {
			return s, nil
		}
		s.errMsg = ""
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SuggestScreen) submit() tea.Cmd {
	if s.sending || s.sent || s.suggester == nil {
		return nil
	}
	if s.input.Blank() {
		s.errMsg = describe(api.ErrEmptySuggestion)
		return nil
	}
	s.sending = true
	s.input.Disabled = true
	text, sg := s.input.Value(), s.suggester
	return func() tea.Msg {
		return suggestedMsg{Err: sg.SuggestPromptTemplate(context.Background(), text)}
	}
}

func describe(err error) string {
	if errors.Is(err, api.ErrEmptySuggestion) {
		return "Enter a prompt template first."
	}
	return "Could not send your suggestion. Please try again."
}

func (s *SuggestScreen) View(width, height int) string {
	var lines []string
	lines = append(lines, theme.Title.Render("Suggest a Prompt Template"), "")

	if s.sent {
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Thanks! Your suggestion was sent."),
			"",
			theme.Hint.Render("press Esc to go back"))
	} else {
		lines = append(lines, s.input.View(), "")
		switch {
		case s.sending:
			lines = append(lines, theme.Hint.Render("Sending..."))
		case s.errMsg != "":
			lines = append(lines, theme.NoticeError.Render(s.errMsg))
		default:
			lines = append(lines, theme.Hint.Render("Describe a category of questions you'd like to answer."))
		}
	}

	box := theme.Card.Width(min(width-4, 80)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
