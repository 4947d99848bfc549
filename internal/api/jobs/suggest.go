package jobs

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"jobwatch/internal/models"
)

// Suggest returns completions for q in relevance order. Failures are not
// logged here: suggestion errors are expected to be swallowed by the caller.
func (c *Client) Suggest(ctx context.Context, field models.Field, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	queryParams := url.Values{}
	queryParams.Set("q", q)
	if limit > 0 {
		queryParams.Set("limit", strconv.Itoa(limit))
	}

	op := "suggest " + string(field)
	data, err := c.get(ctx, op, field.SuggestPath(), queryParams)
	if err != nil {
		return nil, err
	}

	var items []string
	if err := c.parseResponse(op, data, &items); err != nil {
		return nil, err
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}
