// Package feedback records thumbs up/down ratings on prompt templates and
// options. It never touches questionnaire state.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TargetType is what a rating applies to.
type TargetType string

const (
	TargetPrompt TargetType = "prompt"
	TargetOption TargetType = "option"
)

// ErrInvalidTarget is returned for an unknown target type or an empty id.
var ErrInvalidTarget = errors.New("invalid feedback target")

// Target identifies the rated entity.
type Target struct {
	Type TargetType
	ID   string
}

// Validate checks the target type and id.
func (t Target) Validate() error {
	if t.Type != TargetPrompt && t.Type != TargetOption {
		return fmt.Errorf("%w: type %q", ErrInvalidTarget, t.Type)
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTarget)
	}
	return nil
}

// Sender delivers a rating to the backend.
type Sender interface {
	Thumbs(ctx context.Context, t Target, up bool) error
}

// Result is the outcome of one rating, ready to show as a notification.
type Result struct {
	Target Target
	Up     bool
	OK     bool
	Text   string
	Err    error
}

// Service sends ratings and turns their outcome into user-facing text.
type Service struct {
	sender Sender
	logger *zap.Logger
}

// NewService creates a Service. A nil logger disables logging.
func NewService(sender Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sender: sender, logger: logger.Named("feedback")}
}

// ThumbsUp rates t positively.
func (s *Service) ThumbsUp(ctx context.Context, t Target) Result {
	return s.send(ctx, t, true)
}

// ThumbsDown rates t negatively.
func (s *Service) ThumbsDown(ctx context.Context, t Target) Result {
	return s.send(ctx, t, false)
}

// Cmd returns a deferred rating suitable for running off the UI loop.
func (s *Service) Cmd(ctx context.Context, t Target, up bool) func() Result {
	return func() Result { return s.send(ctx, t, up) }
}

// statusError is satisfied by transport errors that carry an HTTP status.
type statusError interface {
	error
	Status() int
}

func (s *Service) send(ctx context.Context, t Target, up bool) Result {
	res := Result{Target: t, Up: up}
	dir := "down"
	if up {
		dir = "up"
	}

	if err := t.Validate(); err != nil {
		res.Err = err
		res.Text = "An error occurred."
		return res
	}

	err := s.sender.Thumbs(ctx, t, up)
	if err == nil {
		res.OK = true
		res.Text = fmt.Sprintf("%s template thumbs %s recorded!", capitalize(string(t.Type)), strings.ToUpper(dir))
		s.logger.Info("rating recorded", zap.String("target", string(t.Type)), zap.String("id", t.ID), zap.Bool("up", up))
		return res
	}

	res.Err = err
	var se statusError
	if errors.As(err, &se) && se.Status() != 0 {
		res.Text = fmt.Sprintf("Failed to record thumbs %s.", dir)
	} else {
		res.Text = "An error occurred."
	}
	s.logger.Warn("rating failed", zap.String("target", string(t.Type)), zap.String("id", t.ID), zap.Bool("up", up), zap.Error(err))
	return res
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
