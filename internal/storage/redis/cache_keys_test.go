package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobwatch/internal/models"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestSuggestionKey(t *testing.T) {
	a := SuggestionKey(models.FieldCompany, "  Google   Cloud ", 8)
	b := SuggestionKey(models.FieldCompany, "google cloud", 8)
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if a != "suggest:company:8:google cloud" {
		t.Errorf("key = %q", a)
	}
	if SuggestionKey(models.FieldLocation, "google cloud", 8) == a {
		t.Error("different fields share a key")
	}
	if SuggestionKey(models.FieldCompany, "google cloud", 5) == a {
		t.Error("different limits share a key")
	}
}

func TestScrapeRateKey(t *testing.T) {
	if got := ScrapeRateKey("default"); got != "ratelimit:scrape:default" {
		t.Errorf("ScrapeRateKey = %q", got)
	}
}

func unreachableCache() *Cache {
	return &Cache{
		client: goredis.NewClient(&goredis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		}),
		logger: zap.NewNop(),
	}
}

func TestCache_ServerDownIsNotAMiss(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.GetSuggestions(ctx, models.FieldKeyword, "go", 8); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetSuggestions err = %v, want a read error", err)
	}
	if err := c.SetSuggestions(ctx, models.FieldKeyword, "go", 8, []string{"Go"}); err == nil {
		t.Error("SetSuggestions succeeded without a server")
	}
	if ok, err := c.AllowScrape(ctx, "default"); err == nil || ok {
		t.Errorf("AllowScrape = %v, %v; want denied with error", ok, err)
	}
}
