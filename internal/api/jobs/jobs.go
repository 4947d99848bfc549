package jobs

import (
	"context"
	"net/url"
	"strconv"

	"jobwatch/internal/models"

	"go.uber.org/zap"
)

type ListParams struct {
	Keyword  string
	Company  string
	Location string
	OrderBy  models.OrderBy
	Limit    int
	Offset   int
}

type SearchParams struct {
	Keyword  string
	Location string
	MaxPages int
}

func (c *Client) ListJobs(ctx context.Context, params ListParams) ([]models.Job, error) {
	queryParams := url.Values{}

	if params.Keyword != "" {
		queryParams.Set("keyword", params.Keyword)
	}

	if params.Company != "" {
		queryParams.Set("company", params.Company)
	}

	if params.Location != "" {
		queryParams.Set("location", params.Location)
	}

	if params.OrderBy != "" {
		queryParams.Set("order_by", string(params.OrderBy))
	} else {
		queryParams.Set("order_by", string(models.OrderNewest))
	}

	// pagination
	if params.Limit > 0 {
		queryParams.Set("limit", strconv.Itoa(params.Limit))
	} else {
		queryParams.Set("limit", "50")
	}

	if params.Offset > 0 {
		queryParams.Set("offset", strconv.Itoa(params.Offset))
	} else {
		queryParams.Set("offset", "0")
	}

	data, err := c.get(ctx, "list jobs", "/jobs", queryParams)
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	if err := c.parseResponse("list jobs", data, &jobs); err != nil {
		c.logger.Error("failed to parse jobs response", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("jobs listed",
		zap.Int("returned", len(jobs)),
		zap.String("keyword", params.Keyword),
		zap.String("company", params.Company),
		zap.String("location", params.Location),
	)

	return jobs, nil
}

func (c *Client) SearchJobs(ctx context.Context, params SearchParams) ([]models.Job, error) {
	queryParams := url.Values{}

	// the backend expects both keys, empty or not
	queryParams.Set("keyword", params.Keyword)
	queryParams.Set("location", params.Location)

	if params.MaxPages > 0 {
		queryParams.Set("max_pages", strconv.Itoa(params.MaxPages))
	}

	data, err := c.get(ctx, "search jobs", "/search", queryParams)
	if err != nil {
		return nil, err
	}

	var jobs []models.Job
	if err := c.parseResponse("search jobs", data, &jobs); err != nil {
		c.logger.Error("failed to parse search response", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("jobs found",
		zap.Int("returned", len(jobs)),
		zap.String("keyword", params.Keyword),
		zap.String("location", params.Location),
	)

	return jobs, nil
}
