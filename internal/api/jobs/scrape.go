package jobs

import (
	"context"
	"net/url"
	"strconv"

	"jobwatch/internal/models"

	"go.uber.org/zap"
)

// Scrape triggers a basic scrape. Not idempotent, never retried.
func (c *Client) Scrape(ctx context.Context, job models.ScrapeJob) (*models.ScrapeAck, error) {
	queryParams := url.Values{}
	queryParams.Set("keywords", job.Keywords)
	queryParams.Set("location", job.Location)
	if job.MaxPages > 0 {
		queryParams.Set("max_pages", strconv.Itoa(job.MaxPages))
	}

	data, err := c.post(ctx, "scrape", "/scrape", queryParams)
	if err != nil {
		c.logger.Error("failed to trigger scrape",
			zap.String("keywords", job.Keywords),
			zap.String("location", job.Location),
			zap.Error(err),
		)
		return nil, err
	}

	var ack models.ScrapeAck
	if err := c.parseResponse("scrape", data, &ack); err != nil {
		c.logger.Error("failed to parse scrape response", zap.Error(err))
		return nil, err
	}

	c.logger.Info("scrape finished",
		zap.String("keywords", job.Keywords),
		zap.String("location", job.Location),
		zap.Int("found", ack.Found),
		zap.Int("created", ack.Created),
	)

	return &ack, nil
}

func (c *Client) AdvancedScrape(ctx context.Context, job models.ScrapeJob) (*models.ScrapeManifest, error) {
	queryParams := url.Values{}
	queryParams.Set("keywords", job.Keywords)
	queryParams.Set("location", job.Location)
	if job.MaxPages > 0 {
		queryParams.Set("max_pages", strconv.Itoa(job.MaxPages))
	}
	queryParams.Set("enrich", strconv.FormatBool(job.Enrich))
	queryParams.Set("headless", strconv.FormatBool(job.Headless))
	queryParams.Set("delay_min", strconv.FormatFloat(job.DelayMin, 'f', -1, 64))
	queryParams.Set("delay_max", strconv.FormatFloat(job.DelayMax, 'f', -1, 64))

	data, err := c.post(ctx, "advanced scrape", "/scrape/advanced", queryParams)
	if err != nil {
		c.logger.Error("failed to trigger advanced scrape",
			zap.String("keywords", job.Keywords),
			zap.String("location", job.Location),
			zap.Error(err),
		)
		return nil, err
	}

	var manifest models.ScrapeManifest
	if err := c.parseResponse("advanced scrape", data, &manifest); err != nil {
		c.logger.Error("failed to parse advanced scrape response", zap.Error(err))
		return nil, err
	}

	c.logger.Info("advanced scrape finished",
		zap.String("keywords", job.Keywords),
		zap.String("location", job.Location),
		zap.Int("found", manifest.Found),
		zap.Int("files", len(manifest.Files)),
	)

	return &manifest, nil
}
