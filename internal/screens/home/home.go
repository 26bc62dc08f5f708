package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/screens/history"
	"github.com/similr/similr/internal/screens/login"
	"github.com/similr/similr/internal/screens/rapidfire"
	"github.com/similr/similr/internal/screens/suggest"
	"github.com/similr/similr/internal/ui/components"
	"github.com/similr/similr/internal/ui/theme"
)

type answeredCountMsg int

// HomeScreen is the main menu. Its items depend on whether a user is signed in.
type HomeScreen struct {
	deps     screens.Deps
	menu     components.Menu
	user     string
	answered int
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, user: deps.Username()}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}
	reopen := func() screen.Screen { return New(h.deps) }

	if h.user == "" {
		return []components.MenuItem{
			{Label: "LOG IN", Action: push(func() screen.Screen {
				return login.New(h.deps, login.ModeLogin, reopen)
			})},
			{Label: "SIGN UP", Action: push(func() screen.Screen {
				return login.New(h.deps, login.ModeSignup, reopen)
			})},
			{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
		}
	}

	return []components.MenuItem{
		{Label: "RAPID FIRE", Hint: "answer questions", Action: push(func() screen.Screen {
			return rapidfire.New(h.deps)
		})},
		{Label: "SUGGEST PROMPT", Disabled: h.deps.Suggester == nil, Action: push(func() screen.Screen {
			return suggest.New(h.deps)
		})},
		{Label: "HISTORY", Disabled: h.deps.History == nil, Action: push(func() screen.Screen {
			return history.New(h.deps.History)
		})},
		{Label: "LOG OUT", Action: h.logout},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) logout() tea.Cmd {
	if h.deps.Session == nil {
		return nil
	}
	if err := h.deps.Session.Logout(context.Background()); err != nil {
		h.errMsg = "Could not log out: " + err.Error()
		return nil
	}
	next := New(h.deps)
	return func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.History == nil || h.user == "" {
		return nil
	}
	log := h.deps.History
	return func() tea.Msg {
		n, err := log.Count(context.Background())
		if err != nil {
			return answeredCountMsg(0)
		}
		return answeredCountMsg(n)
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if n, ok := msg.(answeredCountMsg); ok {
		h.answered = int(n)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || width < 100
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, h.renderStatus(cw))
	sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(h.menu.View()))
	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Foreground(theme.Error).Render(h.errMsg))
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) renderStatus(cw int) string {
	var text string
	if h.user == "" {
		text = lipgloss.NewStyle().Foreground(theme.TextDim).Render("Sign in to start answering")
	} else {
		text = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Hi, "+h.user) +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("   %d answers on this device", h.answered))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Render(text)
}
