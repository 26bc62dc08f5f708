package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/similr/similr/internal/auth"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000/".
	BaseURL string

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the personality/matching REST API. It holds no mutable
// state of its own; the session is read from Source on every call.
type Client struct {
	base   *url.URL
	http   *http.Client
	auth   auth.Source
	logger *zap.Logger
}

// New creates a Client. A nil logger disables logging.
func New(cfg Config, sess auth.Source, logger *zap.Logger) (*Client, error) {
	raw := cfg.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sess == nil {
		sess = auth.Static{}
	}
	return &Client{base: base, http: hc, auth: sess, logger: logger.Named("api")}, nil
}

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any

	// anonymous calls do not require a session.
	anonymous bool
}

// do performs req and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	raw, err := c.doRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NetworkError{Op: req.op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// doRaw performs req and returns the raw response body of a 2xx response.
func (c *Client) doRaw(ctx context.Context, req request) ([]byte, error) {
	sess := c.auth.Session()
	if !req.anonymous && !sess.LoggedIn() {
		return nil, auth.ErrNotLoggedIn
	}

	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal body: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.op, err)
	}
	reqID := uuid.NewString()
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-ID", reqID)
	if sess.LoggedIn() {
		hreq.Header.Set("Authorization", "Token "+sess.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", req.op),
			zap.String("method", req.method),
			zap.String("path", u.Path),
			zap.String("request_id", reqID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, &NetworkError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.logger.Debug("request",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: req.op, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", bytes.TrimSpace(raw))}
	}
	if readErr != nil {
		return nil, &NetworkError{Op: req.op, Err: fmt.Errorf("read body: %w", readErr)}
	}
	return raw, nil
}
