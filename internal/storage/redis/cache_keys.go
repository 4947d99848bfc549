package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobwatch/internal/models"
)

const (
	SuggestionCacheTTL  = 10 * time.Minute
	ScrapeRateWindowTTL = time.Hour
	MaxScrapesPerWindow = 6
)

// SuggestionKey is case-insensitive in the query so "Goo" and "goo" share
// an entry.
func SuggestionKey(field models.Field, q string, limit int) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	return fmt.Sprintf("suggest:%s:%d:%s", field, limit, q)
}

func ScrapeRateKey(profile string) string {
	return fmt.Sprintf("ratelimit:scrape:%s", profile)
}

func (c *Cache) GetSuggestions(ctx context.Context, field models.Field, q string, limit int) ([]string, error) {
	var items []string
	if err := c.loadJSON(ctx, SuggestionKey(field, q, limit), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Cache) SetSuggestions(ctx context.Context, field models.Field, q string, limit int, items []string) error {
	return c.storeJSON(ctx, SuggestionKey(field, q, limit), items, SuggestionCacheTTL)
}

// AllowScrape counts a scrape for profile and reports whether it stays
// within MaxScrapesPerWindow.
func (c *Cache) AllowScrape(ctx context.Context, profile string) (bool, error) {
	count, err := c.countInWindow(ctx, ScrapeRateKey(profile), ScrapeRateWindowTTL)
	if err != nil {
		return false, err
	}
	return count <= MaxScrapesPerWindow, nil
}
