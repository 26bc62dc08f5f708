package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/similr/similr/internal/feedback"
)

// Thumbs rates a prompt template or an option.
func (c *Client) Thumbs(ctx context.Context, t feedback.Target, up bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	action := "thumbs-down"
	if up {
		action = "thumbs-up"
	}
	return c.do(ctx, request{
		op:     "record " + action,
		method: http.MethodPost,
		path:   "api/" + string(t.Type) + "/" + url.PathEscape(t.ID) + "/" + action + "/",
	}, nil)
}
