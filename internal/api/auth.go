package api

import (
	"context"
	"net/http"

	"github.com/similr/similr/internal/auth"
)

var _ auth.Authenticator = (*Client)(nil)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, username, password string) (auth.Session, error) {
	return c.authenticate(ctx, "login", "api/api-token-auth/", username, password)
}

// Signup creates an account and returns its API token.
func (c *Client) Signup(ctx context.Context, username, password string) (auth.Session, error) {
	return c.authenticate(ctx, "signup", "api/signup/", username, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, username, password string) (auth.Session, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		op:        op,
		method:    http.MethodPost,
		path:      path,
		body:      credentials{Username: username, Password: password},
		anonymous: true,
	}, &resp)
	if err != nil {
		return auth.Session{}, err
	}
	if resp.Token == "" {
		return auth.Session{}, ErrNoToken
	}
	return auth.Session{Token: resp.Token, Username: username, IsAdmin: resp.IsAdmin}, nil
}
