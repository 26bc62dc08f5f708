// Package login signs the user in or creates an account.
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
	"github.com/similr/similr/internal/ui/components"
	"github.com/similr/similr/internal/ui/layout"
	"github.com/similr/similr/internal/ui/theme"
)

// Mode selects between signing in and creating an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "Sign up"
	}
	return "Log in"
}

type authDoneMsg struct {
	Err error
}

// LoginScreen collects credentials. On success it replaces the whole
// stack with the screen built by next.
type LoginScreen struct {
	session *auth.Provider
	authn   auth.Authenticator
	next    func() screen.Screen

	mode     Mode
	username components.TextInput
	password components.TextInput
	focus    int
	busy     bool
	errMsg   string
}

var (
	_ screen.Screen          = (*LoginScreen)(nil)
	_ screen.KeyHintProvider = (*LoginScreen)(nil)
	_ screen.KeyCapturer     = (*LoginScreen)(nil)
)

// New creates a LoginScreen in the given mode.
func New(deps screens.Deps, mode Mode, next func() screen.Screen) *LoginScreen {
	pw := components.NewPasswordInput("Password", "")
	pw.Blur()
	return &LoginScreen{
		session:  deps.Session,
		authn:    deps.Authenticator,
		next:     next,
		mode:     mode,
		username: components.NewTextInput("Username", "", 150),
		password: pw,
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.username.Init()
}

func (s *LoginScreen) Title() string {
	return s.mode.String()
}

// CapturingKeys is always true: both fields take letters. Esc still goes back.
func (s *LoginScreen) CapturingKeys() bool {
	return true
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	other := ModeSignup
	if s.mode == ModeSignup {
		other = ModeLogin
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: s.mode.String()},
		{Key: "Ctrl+T", Description: other.String()},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.busy = false
		s.username.Disabled = false
		s.password.Disabled = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		next := s.next()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "shift+tab", "down", "up":
			return s, s.toggleFocus()
		case "ctrl+t":
			if s.mode == ModeLogin {
				s.mode = ModeSignup
			} else {
				s.mode = ModeLogin
			}
			s.errMsg = ""
			return s, nil
		case "enter":
			if s.focus == 0 && s.password.Blank() {
				return s, s.toggleFocus()
			}
			return s, s.submit()
		}
		s.errMsg = ""
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.username, cmd = s.username.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) toggleFocus() tea.Cmd {
	if s.focus == 0 {
		s.focus = 1
		s.username.Blur()
		return s.password.Focus()
	}
	s.focus = 0
	s.password.Blur()
	return s.username.Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	if s.busy || s.session == nil || s.authn == nil {
		return nil
	}
	user, pass := s.username.Value(), s.password.Value()
	if strings.TrimSpace(user) == "" || pass == "" {
		s.errMsg = describe(auth.ErrMissingCredentials)
		return nil
	}

	s.busy = true
	s.username.Disabled = true
	s.password.Disabled = true
	sess, authn, mode := s.session, s.authn, s.mode
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if mode == ModeSignup {
			err = sess.Signup(ctx, authn, user, pass)
		} else {
			err = sess.Login(ctx, authn, user, pass)
		}
		return authDoneMsg{Err: err}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return "Enter a username and password."
	case errors.Is(err, api.ErrNoToken):
		return "The server did not return a session."
	}
	switch api.HTTPStatus(err) {
	case 0:
		return "Could not reach the server."
	case http.StatusBadRequest, http.StatusUnauthorized:
		return "Invalid username or password."
	}
	return "Something went wrong. Please try again."
}

func (s *LoginScreen) View(width, height int) string {
	lines := []string{
		theme.Title.Render(s.mode.String()),
		"",
		s.username.View(),
		s.password.View(),
		"",
	}
	switch {
	case s.busy:
		lines = append(lines, theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		lines = append(lines, theme.NoticeError.Render(s.errMsg))
	default:
		lines = append(lines, theme.Hint.Render("Enter to "+strings.ToLower(s.mode.String())))
	}

	box := theme.Card.Width(min(width-4, 60)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
