package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/similr/similr/internal/insights"
)

// Insights returns the ranked report entries for category.
func (c *Client) Insights(ctx context.Context, category string, positive bool) ([]insights.Result, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("is_positive", strconv.FormatBool(positive))

	var out []insights.Result
	err := c.do(ctx, request{
		op:     "fetch insights",
		method: http.MethodGet,
		path:   "api/insights/",
		query:  q,
	}, &out)
	return out, err
}
