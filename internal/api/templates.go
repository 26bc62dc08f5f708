package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PromptTemplate is a question-generation template the user can filter on.
type PromptTemplate struct {
	ID   string `json:"id"`
	Text string `json:"template_text"`
}

// PromptTemplates lists every prompt template.
func (c *Client) PromptTemplates(ctx context.Context) ([]PromptTemplate, error) {
	var raw []struct {
		ID   flexString `json:"id"`
		Text string     `json:"template_text"`
	}
	err := c.do(ctx, request{
		op:     "fetch prompt templates",
		method: http.MethodGet,
		path:   "api/prompt-templates/",
	}, &raw)
	if err != nil {
		return nil, err
	}
	out := make([]PromptTemplate, len(raw))
	for i, r := range raw {
		out[i] = PromptTemplate{ID: string(r.ID), Text: r.Text}
	}
	return out, nil
}

// SuggestPromptTemplate proposes a new template to the backend.
func (c *Client) SuggestPromptTemplate(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptySuggestion
	}
	return c.do(ctx, request{
		op:     "suggest prompt template",
		method: http.MethodPost,
		path:   "api/suggest-prompt-template/",
		body:   map[string]string{"template_text": text},
	}, nil)
}

// TemplateLister is the source a TemplateCache reads through.
type TemplateLister interface {
	PromptTemplates(ctx context.Context) ([]PromptTemplate, error)
}

// TemplateCache memoizes the prompt template list for a TTL. Concurrent
// misses share one request. Failures are not cached.
type TemplateCache struct {
	src TemplateLister
	ttl time.Duration
	now func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	items   []PromptTemplate
	fetched time.Time
}

// NewTemplateCache wraps src. A zero ttl caches until Invalidate is called.
func NewTemplateCache(src TemplateLister, ttl time.Duration) *TemplateCache {
	return &TemplateCache{src: src, ttl: ttl, now: time.Now}
}

// Get returns the cached list, fetching it when missing or expired.
func (tc *TemplateCache) Get(ctx context.Context) ([]PromptTemplate, error) {
	if items, ok := tc.cached(); ok {
		return items, nil
	}

	v, err, _ := tc.group.Do("templates", func() (any, error) {
		if items, ok := tc.cached(); ok {
			return items, nil
		}
		// One caller's cancellation must not fail the others sharing this call.
		items, err := tc.src.PromptTemplates(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		tc.mu.Lock()
		tc.items = items
		tc.fetched = tc.now()
		tc.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]PromptTemplate)), nil
}

// Invalidate drops the cached list.
func (tc *TemplateCache) Invalidate() {
	tc.mu.Lock()
	tc.items = nil
	tc.fetched = time.Time{}
	tc.mu.Unlock()
}

func (tc *TemplateCache) cached() ([]PromptTemplate, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.fetched.IsZero() {
		return nil, false
	}
	if tc.ttl > 0 && tc.now().Sub(tc.fetched) >= tc.ttl {
		return nil, false
	}
	return clone(tc.items), true
}

func clone(in []PromptTemplate) []PromptTemplate {
	out := make([]PromptTemplate, len(in))
	copy(out, in)
	return out
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
