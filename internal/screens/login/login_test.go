package login

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/router"
	"github.com/similr/similr/internal/screen"
	"github.com/similr/similr/internal/screens"
)

type memRepo struct{ s auth.Session }

func (m *memRepo) Load(context.Context) (auth.Session, error)   { return m.s, nil }
func (m *memRepo) Save(_ context.Context, s auth.Session) error { m.s = s; return nil }
func (m *memRepo) Clear(context.Context) error                  { m.s = auth.Session{}; return nil }

type fakeAuth struct {
	err    error
	signup bool
}

func (f *fakeAuth) Login(_ context.Context, u, _ string) (auth.Session, error) {
	return auth.Session{Token: "t-" + u}, f.err
}

func (f *fakeAuth) Signup(_ context.Context, u, _ string) (auth.Session, error) {
	f.signup = true
	return auth.Session{Token: "s-" + u}, f.err
}

type nextScreen struct{}

func (nextScreen) Init() tea.Cmd                             { return nil }
func (n nextScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return n, nil }
func (nextScreen) View(int, int) string                      { return "next" }
func (nextScreen) Title() string                             { return "Next" }

func newLogin(t *testing.T, a *fakeAuth, mode Mode) (*LoginScreen, *auth.Provider) {
	t.Helper()
	p, err := auth.NewProvider(context.Background(), &memRepo{}, nil)
	require.NoError(t, err)
	s := New(screens.Deps{Session: p, Authenticator: a}, mode, func() screen.Screen { return nextScreen{} })
	return s, p
}

func typeText(s *LoginScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func enter(s *LoginScreen) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

// finish runs the auth command and feeds its result back.
func finish(t *testing.T, s *LoginScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, authDoneMsg{}, msg)
	_, next := s.Update(msg)
	if next == nil {
		return nil
	}
	return next()
}

func TestLoginSuccessResetsStack(t *testing.T) {
	s, p := newLogin(t, &fakeAuth{}, ModeLogin)

	typeText(s, "demo")
	enter(s)
	assert.Equal(t, 1, s.focus, "enter on the username moves to the password")
	typeText(s, "secret")

	msg := finish(t, s, enter(s))
	reset, ok := msg.(router.ResetScreenMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "Next", reset.Screen.Title())
	assert.Equal(t, "demo", p.Session().Username)
	assert.Equal(t, "t-demo", p.Session().Token)
}

func TestSignupMode(t *testing.T) {
	a := &fakeAuth{}
	s, p := newLogin(t, a, ModeLogin)
	s.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	assert.Equal(t, ModeSignup, s.mode)

	typeText(s, "newbie")
	enter(s)
	typeText(s, "pw")
	finish(t, s, enter(s))

	assert.True(t, a.signup)
	assert.Equal(t, "s-newbie", p.Session().Token)
}

func TestBlankCredentialsAreRejectedLocally(t *testing.T) {
	s, _ := newLogin(t, &fakeAuth{}, ModeLogin)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	typeText(s, "pw")

	assert.Nil(t, enter(s))
	assert.Equal(t, "Enter a username and password.", s.errMsg)
}

func TestLoginFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bad credentials", &api.NetworkError{StatusCode: 400}, "Invalid username or password."},
		{"no token", api.ErrNoToken, "The server did not return a session."},
		{"offline", errors.New("dial tcp: refused"), "Could not reach the server."},
		{"server error", &api.NetworkError{StatusCode: 500}, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := newLogin(t, &fakeAuth{err: tt.err}, ModeLogin)
			typeText(s, "demo")
			enter(s)
			typeText(s, "pw")

			assert.Nil(t, finish(t, s, enter(s)))
			assert.Equal(t, tt.want, s.errMsg)
			assert.False(t, p.Session().LoggedIn())
			assert.False(t, s.busy)
		})
	}
}

func TestEscGoesBack(t *testing.T) {
	s, _ := newLogin(t, &fakeAuth{}, ModeLogin)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
