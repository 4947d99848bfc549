// Package suggest drives per-field autocomplete: debounced fetches whose
// results are applied only if no newer input arrived in the meantime.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"jobwatch/internal/debounce"
	"jobwatch/internal/dispatch"
	"jobwatch/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultWindow = 200 * time.Millisecond
	DefaultLimit  = 8
)

// Fetcher is the transport used for lookups; *jobs.Client satisfies it.
type Fetcher interface {
	Suggest(ctx context.Context, field models.Field, q string, limit int) ([]string, error)
}

// Cache is an optional read-through store for suggestion lists.
type Cache interface {
	GetSuggestions(ctx context.Context, field models.Field, q string, limit int) ([]string, error)
	SetSuggestions(ctx context.Context, field models.Field, q string, limit int, items []string) error
}

type Options struct {
	Window   time.Duration
	Limit    int
	Timeout  time.Duration
	Cache    Cache
	OnUpdate func(models.SuggestionResult)
}

// Controller owns the suggestion list of one field.
type Controller struct {
	field     models.Field
	fetcher   Fetcher
	debouncer *debounce.Debouncer
	opts      Options
	events    *dispatch.Queue[models.SuggestionResult]
	logger    *zap.Logger

	mu          sync.Mutex
	generation  uint64
	suggestions []string
	cancel      context.CancelFunc
}

func NewController(field models.Field, fetcher Fetcher, d *debounce.Debouncer, opts Options, logger *zap.Logger) *Controller {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Controller{
		field:     field,
		fetcher:   fetcher,
		debouncer: d,
		opts:      opts,
		events:    dispatch.New(opts.OnUpdate),
		logger:    logger.With(zap.String("field", string(field))),
	}
}

func (c *Controller) Field() models.Field { return c.field }

// OnInputChange registers the latest text typed into the field.
func (c *Controller) OnInputChange(text string) {
	defer c.events.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.abortInFlight()

	if strings.TrimSpace(text) == "" {
		c.debouncer.Cancel(string(c.field))
		changed := len(c.suggestions) > 0
		c.suggestions = nil
		if changed {
			c.notify(models.SuggestionResult{Field: c.field, Generation: c.generation})
		}
		return
	}

	req := models.SuggestionRequest{
		Field:      c.field,
		Text:       text,
		Limit:      c.opts.Limit,
		Generation: c.generation,
	}
	c.debouncer.Schedule(string(c.field), c.opts.Window, func() { c.fetch(req) })
}

// abortInFlight must be called with mu held.
func (c *Controller) abortInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) fetch(req models.SuggestionRequest) {
	c.mu.Lock()
	if req.Generation != c.generation {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.Timeout)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	items, err := c.lookup(ctx, req)

	defer c.events.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Generation != c.generation {
		c.logger.Debug("suggestions superseded",
			zap.Uint64("generation", req.Generation),
			zap.Uint64("current", c.generation),
		)
		return
	}
	c.cancel = nil

	if err != nil {
		// suggestions degrade silently, they never block the search
		c.logger.Debug("suggestion lookup failed", zap.String("text", req.Text), zap.Error(err))
		return
	}

	c.suggestions = items
	c.notify(models.SuggestionResult{Field: c.field, Generation: req.Generation, Items: copyItems(items)})
}

func (c *Controller) lookup(ctx context.Context, req models.SuggestionRequest) ([]string, error) {
	if c.opts.Cache != nil {
		if items, err := c.opts.Cache.GetSuggestions(ctx, req.Field, req.Text, req.Limit); err == nil {
			return items, nil
		}
	}

	items, err := c.fetcher.Suggest(ctx, req.Field, req.Text, req.Limit)
	if err != nil {
		return nil, err
	}

	if c.opts.Cache != nil {
		if err := c.opts.Cache.SetSuggestions(ctx, req.Field, req.Text, req.Limit, items); err != nil {
			c.logger.Debug("failed to cache suggestions", zap.Error(err))
		}
	}
	return items, nil
}

// notify must be called with mu held. OnUpdate runs after mu is released.
func (c *Controller) notify(r models.SuggestionResult) {
	c.events.Enqueue(r)
}

// Suggestions returns a copy of the visible list.
func (c *Controller) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyItems(c.suggestions)
}

// Generation is the id of the latest request issued for the field.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func copyItems(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
