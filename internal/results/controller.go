// Package results keeps the visible job list in step with the latest
// criteria. Every fetch carries a generation number; only the newest
// generation may touch the visible state (last intent wins, not last
// arrival).
package results

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobwatch/internal/api/jobs"
	"jobwatch/internal/dispatch"
	"jobwatch/internal/filters"
	"jobwatch/internal/models"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by blocking fetches whose outcome was discarded
// because a newer request was issued.
var ErrSuperseded = errors.New("superseded by a newer request")

const refreshLimit = 50

// Searcher is the transport used for result sets; *jobs.Client satisfies it.
type Searcher interface {
	SearchJobs(ctx context.Context, params jobs.SearchParams) ([]models.Job, error)
	ListJobs(ctx context.Context, params jobs.ListParams) ([]models.Job, error)
}

// Snapshot is the visible state. Err set means the fetch failed, which is
// not the same as an empty Jobs list.
type Snapshot struct {
	Generation uint64
	Loading    bool
	Jobs       []models.Job
	Err        error
	Criteria   filters.State
}

type Controller struct {
	searcher Searcher
	timeout  time.Duration
	events   *dispatch.Queue[Snapshot]
	logger   *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      Snapshot
}

func NewController(searcher Searcher, timeout time.Duration, onChange func(Snapshot), logger *zap.Logger) *Controller {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Controller{
		searcher: searcher,
		timeout:  timeout,
		events:   dispatch.New(onChange),
		logger:   logger,
	}
}

// OnCriteriaChange starts a search for criteria and returns at once. The
// generation is taken before returning, so call order decides the winner.
func (c *Controller) OnCriteriaChange(criteria filters.State) {
	ctx, g := c.begin(context.Background(), criteria)
	go func() {
		_ = c.run(ctx, g, criteria, c.search)
	}()
}

// Fetch is the blocking form of OnCriteriaChange.
func (c *Controller) Fetch(ctx context.Context, criteria filters.State) error {
	ctx, g := c.begin(ctx, criteria)
	return c.run(ctx, g, criteria, c.search)
}

// Refresh reloads the stored listing with the full filter projection. It is
// used after a scrape and follows the same staleness rules.
func (c *Controller) Refresh(ctx context.Context, criteria filters.State) error {
	ctx, g := c.begin(ctx, criteria)
	return c.run(ctx, g, criteria, c.list)
}

func (c *Controller) begin(parent context.Context, criteria filters.State) (context.Context, uint64) {
	defer c.events.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	// the superseded request cannot win anymore, free its connection
	if c.cancel != nil {
		c.cancel()
	}

	c.generation++
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	c.cancel = cancel

	c.state.Generation = c.generation
	c.state.Loading = true
	c.state.Criteria = criteria
	c.notify()

	return ctx, c.generation
}

type fetchFunc func(ctx context.Context, criteria filters.State) ([]models.Job, error)

func (c *Controller) run(ctx context.Context, g uint64, criteria filters.State, fetch fetchFunc) error {
	found, err := fetch(ctx, criteria)

	defer c.events.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	if g != c.generation {
		c.logger.Debug("search result superseded",
			zap.Uint64("generation", g),
			zap.Uint64("current", c.generation),
		)
		return ErrSuperseded
	}

	c.cancel()
	c.cancel = nil
	c.state.Loading = false

	if err != nil {
		c.logger.Warn("search failed",
			zap.Uint64("generation", g),
			zap.String("keyword", criteria.KeywordValue()),
			zap.Error(err),
		)
		c.state.Err = err
		c.state.Jobs = nil
		c.notify()
		return err
	}

	if found == nil {
		found = []models.Job{}
	}
	c.state.Err = nil
	c.state.Jobs = found
	c.notify()

	c.logger.Debug("search results applied",
		zap.Uint64("generation", g),
		zap.Int("count", len(found)),
	)
	return nil
}

func (c *Controller) search(ctx context.Context, criteria filters.State) ([]models.Job, error) {
	criteria = criteria.Normalize()
	return c.searcher.SearchJobs(ctx, jobs.SearchParams{
		Keyword:  criteria.KeywordValue(),
		Location: criteria.LocationValue(),
		MaxPages: criteria.MaxPages,
	})
}

func (c *Controller) list(ctx context.Context, criteria filters.State) ([]models.Job, error) {
	criteria = criteria.Normalize()
	return c.searcher.ListJobs(ctx, jobs.ListParams{
		Keyword:  criteria.KeywordValue(),
		Company:  criteria.CompanyValue(),
		Location: criteria.LocationValue(),
		OrderBy:  criteria.OrderBy,
		Limit:    refreshLimit,
	})
}

// notify must be called with mu held. The listener runs after mu is
// released, in notification order.
func (c *Controller) notify() {
	c.events.Enqueue(c.snapshotLocked())
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	if s.Jobs != nil {
		s.Jobs = append([]models.Job(nil), s.Jobs...)
	}
	return s
}
