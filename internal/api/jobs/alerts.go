package jobs

import (
	"context"
	"net/url"
	"strconv"

	"jobwatch/internal/models"

	"go.uber.org/zap"
)

func (c *Client) ListAlerts(ctx context.Context, limit, offset int) ([]models.AlertLog, error) {
	queryParams := url.Values{}
	if limit > 0 {
		queryParams.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		queryParams.Set("offset", strconv.Itoa(offset))
	}

	data, err := c.get(ctx, "list alerts", "/alerts", queryParams)
	if err != nil {
		c.logger.Error("failed to list alerts", zap.Error(err))
		return nil, err
	}

	var logs []models.AlertLog
	if err := c.parseResponse("list alerts", data, &logs); err != nil {
		c.logger.Error("failed to parse alerts response", zap.Error(err))
		return nil, err
	}

	c.logger.Debug("alert logs retrieved", zap.Int("count", len(logs)))

	return logs, nil
}
