package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/similr/similr/internal/question"
	"github.com/similr/similr/internal/settings"
)

// FetchNext asks the backend for the next question under s. Every call hits
// the network; nothing is cached.
func (c *Client) FetchNext(ctx context.Context, s settings.Settings) (*question.Question, error) {
	q := url.Values{}
	q.Set("retainPrompt", strconv.FormatBool(s.RetainPromptTemplate))
	if s.HasTemplate() {
		q.Set("promptTemplateId", s.SelectedPromptTemplateID)
	}

	raw, err := c.doRaw(ctx, request{
		op:     "fetch next question",
		method: http.MethodGet,
		path:   "api/option-pairs/next/",
		query:  q,
	})
	if err != nil {
		return nil, err
	}

	next, err := question.Decode(raw)
	if err != nil {
		c.logger.Warn("undecodable question", zap.Error(err))
		return nil, err
	}
	return next, nil
}

// SubmitChoice records an answer.
func (c *Client) SubmitChoice(ctx context.Context, a question.Answer) error {
	return c.do(ctx, request{
		op:     "submit choice",
		method: http.MethodPost,
		path:   "api/user-choices/",
		body:   a,
	}, nil)
}
