package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	s       Session
	saveErr error
}

func (m *memRepo) Load(context.Context) (Session, error) { return m.s, nil }
func (m *memRepo) Save(_ context.Context, s Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.s = s
	return nil
}
func (m *memRepo) Clear(context.Context) error { m.s = Session{}; return nil }

type fakeAuth struct {
	session Session
	err     error
	calls   int
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (Session, error) {
	f.calls++
	return f.session, f.err
}

func (f *fakeAuth) Signup(ctx context.Context, u, p string) (Session, error) {
	return f.Login(ctx, u, p)
}

func TestProviderLoadsPersistedSession(t *testing.T) {
	repo := &memRepo{s: Session{Token: "abc", Username: "ada"}}
	p, err := NewProvider(context.Background(), repo, nil)
	require.NoError(t, err)
	assert.True(t, p.Session().LoggedIn())
	assert.Equal(t, "ada", p.Session().Username)
}

func TestProviderLogin(t *testing.T) {
	repo := &memRepo{}
	p, err := NewProvider(context.Background(), repo, nil)
	require.NoError(t, err)

	a := &fakeAuth{session: Session{Token: "t1"}}
	require.NoError(t, p.Login(context.Background(), a, "  grace ", "pw"))

	assert.Equal(t, "t1", p.Session().Token)
	assert.Equal(t, "grace", p.Session().Username, "username falls back to the trimmed input")
	assert.Equal(t, p.Session(), repo.s, "session must be persisted")
}

func TestProviderLoginRejectsBlankCredentials(t *testing.T) {
	p, err := NewProvider(context.Background(), &memRepo{}, nil)
	require.NoError(t, err)

	a := &fakeAuth{}
	err = p.Login(context.Background(), a, "   ", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	err = p.Signup(context.Background(), a, "ada", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, a.calls, "backend must not be called")
}

func TestProviderLoginFailureKeepsOldSession(t *testing.T) {
	old := Session{Token: "old", Username: "ada"}
	p, err := NewProvider(context.Background(), &memRepo{s: old}, nil)
	require.NoError(t, err)

	boom := errors.New("bad credentials")
	err = p.Login(context.Background(), &fakeAuth{err: boom}, "ada", "nope")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, old, p.Session())
}

func TestProviderLogout(t *testing.T) {
	repo := &memRepo{s: Session{Token: "abc"}}
	p, err := NewProvider(context.Background(), repo, nil)
	require.NoError(t, err)

	require.NoError(t, p.Logout(context.Background()))
	assert.False(t, p.Session().LoggedIn())
	assert.False(t, repo.s.LoggedIn())
}

func TestStatic(t *testing.T) {
	var src Source = Static{Token: "x", Username: "u"}
	assert.Equal(t, Session{Token: "x", Username: "u"}, src.Session())
}
