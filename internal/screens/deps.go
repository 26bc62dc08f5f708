// Package screens holds what the individual screens share.
package screens

import (
	"context"

	"go.uber.org/zap"

	"github.com/similr/similr/internal/api"
	"github.com/similr/similr/internal/auth"
	"github.com/similr/similr/internal/config"
	"github.com/similr/similr/internal/engine"
	"github.com/similr/similr/internal/feedback"
	"github.com/similr/similr/internal/insights"
	"github.com/similr/similr/internal/settings"
	"github.com/similr/similr/internal/store"
)

// Backend supplies and records questions.
type Backend interface {
	engine.Fetcher
	engine.Submitter
}

// TemplateSource lists prompt templates, usually through api.TemplateCache.
type TemplateSource interface {
	Get(ctx context.Context) ([]api.PromptTemplate, error)
}

// Suggester proposes a new prompt template.
type Suggester interface {
	SuggestPromptTemplate(ctx context.Context, text string) error
}

// InsightSource loads the results report.
type InsightSource interface {
	Insights(ctx context.Context, category string, positive bool) ([]insights.Result, error)
}

// AnswerHistory reads the local answer log.
type AnswerHistory interface {
	Recent(ctx context.Context, limit int) ([]store.AnswerRecord, error)
	Count(ctx context.Context) (int, error)
}

// Deps are the collaborators screens are built from. Nil fields disable the
// features that need them.
type Deps struct {
	Backend       Backend
	Authenticator auth.Authenticator
	Session       *auth.Provider
	Settings      settings.Repo
	Templates     TemplateSource
	Suggester     Suggester
	Insights      InsightSource
	Feedback      *feedback.Service
	History       AnswerHistory
	Config        config.Config
	Logger        *zap.Logger
}

// Log returns the logger, or a no-op logger when none is set.
func (d Deps) Log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Username returns the signed-in username, or "".
func (d Deps) Username() string {
	if d.Session == nil {
		return ""
	}
	s := d.Session.Session()
	if !s.LoggedIn() {
		return ""
	}
	return s.Username
}
