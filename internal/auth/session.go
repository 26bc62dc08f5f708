package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned when an authenticated call is made without a token.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrMissingCredentials is returned when a username or password is blank.
var ErrMissingCredentials = errors.New("username and password are required")

// Session is the identity obtained from the backend's token endpoint.
type Session struct {
	Token    string
	Username string
	IsAdmin  bool
}

// LoggedIn reports whether the session carries a token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Source exposes the current session read-only.
type Source interface {
	Session() Session
}

// Static is a fixed Source, handy for one-shot commands and tests.
type Static Session

// Session returns s.
func (s Static) Session() Session { return Session(s) }

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Session, error)
	Signup(ctx context.Context, username, password string) (Session, error)
}

// Repo persists the session between runs.
type Repo interface {
	// Load returns the saved session, or the zero Session if there is none.
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Provider holds the current session. Readers see a consistent snapshot; only
// Login, Signup and Logout replace it.
type Provider struct {
	mu     sync.RWMutex
	cur    Session
	repo   Repo
	logger *zap.Logger
}

var _ Source = (*Provider)(nil)

// NewProvider loads the persisted session from repo.
func NewProvider(ctx context.Context, repo Repo, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &Provider{cur: s, repo: repo, logger: logger}, nil
}

// Session returns the current session.
func (p *Provider) Session() Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}

// Login authenticates and persists the resulting session.
func (p *Provider) Login(ctx context.Context, a Authenticator, username, password string) error {
	return p.authenticate(ctx, "login", a.Login, username, password)
}

// Signup registers a new account and persists the resulting session.
func (p *Provider) Signup(ctx context.Context, a Authenticator, username, password string) error {
	return p.authenticate(ctx, "signup", a.Signup, username, password)
}

func (p *Provider) authenticate(ctx context.Context, op string, fn func(context.Context, string, string) (Session, error), username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	s, err := fn(ctx, username, password)
	if err != nil {
		p.logger.Warn("authentication failed", zap.String("op", op), zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.Username == "" {
		s.Username = username
	}

	if err := p.repo.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	p.mu.Lock()
	p.cur = s
	p.mu.Unlock()

	p.logger.Info("authenticated", zap.String("op", op), zap.String("username", s.Username))
	return nil
}

// Logout forgets the session locally and on disk.
func (p *Provider) Logout(ctx context.Context) error {
	if err := p.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	p.mu.Lock()
	p.cur = Session{}
	p.mu.Unlock()
	return nil
}
