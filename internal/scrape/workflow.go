package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jobwatch/internal/dispatch"
	"jobwatch/internal/filters"
	"jobwatch/internal/models"
	"jobwatch/internal/results"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultKeywords = "Software Engineer"
	DefaultLocation = "Remote"
)

// Scraper triggers backend scrapes; *jobs.Client satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, job models.ScrapeJob) (*models.ScrapeAck, error)
	AdvancedScrape(ctx context.Context, job models.ScrapeJob) (*models.ScrapeManifest, error)
}

// Refresher reloads the visible result list; *results.Controller satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, criteria filters.State) error
}

// Options tune an advanced scrape. Delays are in seconds.
type Options struct {
	Enrich   bool
	Headless bool
	DelayMin float64
	DelayMax float64
}

func DefaultOptions() Options {
	return Options{Enrich: true, Headless: true, DelayMin: 2, DelayMax: 5}
}

// Result of one run. Rejected means another run was in progress and
// nothing was sent.
type Result struct {
	Rejected bool
	Ack      *models.ScrapeAck
	Manifest *models.ScrapeManifest
	Label    string
	Link     string
}

type Status struct {
	State State
	Busy  bool
	Err   error
	Link  string
}

type Workflow struct {
	scraper      Scraper
	refresher    Refresher
	validate     *validator.Validate
	filesBaseURL string
	events       *dispatch.Queue[Status]
	logger       *zap.Logger

	mu     sync.Mutex
	status Status
}

func NewWorkflow(scraper Scraper, refresher Refresher, filesBaseURL string, onChange func(Status), logger *zap.Logger) *Workflow {
	return &Workflow{
		scraper:      scraper,
		refresher:    refresher,
		validate:     validator.New(),
		filesBaseURL: filesBaseURL,
		events:       dispatch.New(onChange),
		logger:       logger,
		status:       Status{State: StateIdle},
	}
}

// RunBasic scrapes for criteria and then refreshes the result list.
func (w *Workflow) RunBasic(ctx context.Context, criteria filters.State) (Result, error) {
	job := BuildJob(criteria, nil)
	return w.run(ctx, criteria, job, func(ctx context.Context) (Result, error) {
		ack, err := w.scraper.Scrape(ctx, job)
		if err != nil {
			return Result{}, err
		}
		return Result{Ack: ack}, nil
	})
}

// RunAdvanced is RunBasic against the advanced endpoint; the first
// non-empty manifest link is surfaced in the result.
func (w *Workflow) RunAdvanced(ctx context.Context, criteria filters.State, opts Options) (Result, error) {
	job := BuildJob(criteria, &opts)
	return w.run(ctx, criteria, job, func(ctx context.Context) (Result, error) {
		manifest, err := w.scraper.AdvancedScrape(ctx, job)
		if err != nil {
			return Result{}, err
		}
		label, path := SelectLink(manifest.Files)
		return Result{
			Manifest: manifest,
			Label:    label,
			Link:     ResolveLink(w.filesBaseURL, path),
		}, nil
	})
}

// BuildJob turns criteria into a scrape job, filling the defaults the UI
// has always used for empty keyword and location.
func BuildJob(criteria filters.State, opts *Options) models.ScrapeJob {
	criteria = criteria.Normalize()
	job := models.ScrapeJob{
		Keywords: criteria.KeywordValue(),
		Location: criteria.LocationValue(),
		MaxPages: criteria.MaxPages,
	}
	if job.Keywords == "" {
		job.Keywords = DefaultKeywords
	}
	if job.Location == "" {
		job.Location = DefaultLocation
	}
	if opts != nil {
		job.Enrich = opts.Enrich
		job.Headless = opts.Headless
		job.DelayMin = opts.DelayMin
		job.DelayMax = opts.DelayMax
	}
	return job
}

func (w *Workflow) run(ctx context.Context, criteria filters.State, job models.ScrapeJob, trigger func(context.Context) (Result, error)) (Result, error) {
	if err := w.validate.Struct(job); err != nil {
		return Result{}, fmt.Errorf("invalid scrape job: %w", err)
	}

	if !w.begin() {
		w.logger.Debug("scrape already running, request ignored",
			zap.String("keywords", job.Keywords),
		)
		return Result{Rejected: true}, nil
	}

	res, err := trigger(ctx)
	if err != nil {
		w.fail(err)
		return res, fmt.Errorf("scrape: %w", err)
	}

	w.transition(StateRefreshing, nil, "")

	err = w.refresher.Refresh(ctx, criteria)
	// a newer search already owns the list, the refresh has nothing to add
	if err != nil && !errors.Is(err, results.ErrSuperseded) {
		w.fail(err)
		return res, fmt.Errorf("refresh results: %w", err)
	}

	w.transition(StateIdle, nil, res.Link)
	w.logger.Info("scrape workflow finished",
		zap.String("keywords", job.Keywords),
		zap.String("location", job.Location),
		zap.String("link", res.Link),
	)
	return res, nil
}

// begin moves Idle (or an acknowledged Failed) to Scraping. It returns
// false when a run is already in progress.
func (w *Workflow) begin() bool {
	defer w.events.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	if IsBusy(w.status.State) {
		return false
	}
	if w.status.State == StateFailed {
		w.setLocked(StateIdle, nil, "")
	}
	w.setLocked(StateScraping, nil, "")
	return true
}

func (w *Workflow) fail(err error) {
	w.logger.Error("scrape workflow failed", zap.Error(err))
	w.transition(StateFailed, err, "")
}

func (w *Workflow) transition(to State, err error, link string) {
	defer w.events.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(to, err, link)
}

func (w *Workflow) setLocked(to State, err error, link string) {
	from := w.status.State
	if !IsTransitionAllowed(from, to) {
		// only reachable through a bug in this package
		panic(fmt.Sprintf("scrape: illegal transition %s -> %s", from, to))
	}
	w.status = Status{State: to, Busy: IsBusy(to), Err: err, Link: link}
	w.events.Enqueue(w.status)
}

func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}
