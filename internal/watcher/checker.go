// Package watcher periodically scrapes for a saved filter profile and
// notifies about jobs it has not reported before.
package watcher

import (
	"context"
	"fmt"
	"time"

	"jobwatch/internal/filters"
	"jobwatch/internal/models"
	"jobwatch/internal/results"
	"jobwatch/internal/scrape"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Store interface {
	GetProfile(ctx context.Context, name string) (*models.FilterProfile, error)
	GetUnseenJobs(ctx context.Context, profile string, jobIDs []int64) ([]int64, error)
	MarkJobsSeen(ctx context.Context, profile string, jobIDs []int64) error
	CleanOldSeenJobs(ctx context.Context, daysOld int) (int64, error)
}

// Notifier reports the ids it actually delivered; only those are marked seen.
type Notifier interface {
	NotifyJobs(ctx context.Context, profile string, jobs []models.Job) ([]int64, error)
}

// Limiter caps how often a profile may trigger a scrape. Optional.
type Limiter interface {
	AllowScrape(ctx context.Context, profile string) (bool, error)
}

type Scraper interface {
	RunBasic(ctx context.Context, criteria filters.State) (scrape.Result, error)
}

type ResultSource interface {
	Snapshot() results.Snapshot
}

const (
	cleanupSpec   = "@daily"
	seenRetention = 30
)

type JobChecker struct {
	cron     *cron.Cron
	spec     string
	profile  string
	store    Store
	limiter  Limiter
	scraper  Scraper
	results  ResultSource
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
}

func New(
	spec string,
	profile string,
	store Store,
	limiter Limiter,
	scraper Scraper,
	source ResultSource,
	notifier Notifier,
	logger *zap.Logger,
) *JobChecker {
	return &JobChecker{
		cron:     cron.New(),
		spec:     spec,
		profile:  profile,
		store:    store,
		limiter:  limiter,
		scraper:  scraper,
		results:  source,
		notifier: notifier,
		timeout:  30 * time.Minute,
		logger:   logger.With(zap.String("profile", profile)),
	}
}

// Start registers the check, runs it once right away and blocks until ctx
// is done.
func (jc *JobChecker) Start(ctx context.Context) error {
	if _, err := jc.cron.AddFunc(jc.spec, func() { jc.runCheck(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	if _, err := jc.cron.AddFunc(cleanupSpec, func() { jc.cleanup(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	jc.cron.Start()
	jc.logger.Info("job checker started", zap.String("spec", jc.spec))

	jc.runCheck(ctx)

	<-ctx.Done()
	<-jc.cron.Stop().Done()
	jc.logger.Info("job checker stopped")

	return nil
}

func (jc *JobChecker) runCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, jc.timeout)
	defer cancel()

	if err := jc.Check(checkCtx); err != nil {
		jc.logger.Error("job check failed", zap.Error(err))
	}
}

func (jc *JobChecker) cleanup(ctx context.Context) {
	n, err := jc.store.CleanOldSeenJobs(ctx, seenRetention)
	if err != nil {
		jc.logger.Error("seen jobs cleanup failed", zap.Error(err))
		return
	}
	jc.logger.Debug("seen jobs cleaned", zap.Int64("count", n))
}

// Check scrapes for the profile, refreshes and notifies about unseen jobs.
func (jc *JobChecker) Check(ctx context.Context) error {
	profile, err := jc.store.GetProfile(ctx, jc.profile)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		jc.logger.Warn("profile not found, nothing to watch")
		return nil
	}

	if jc.limiter != nil {
		ok, err := jc.limiter.AllowScrape(ctx, jc.profile)
		if err != nil {
			jc.logger.Warn("failed to check scrape rate limit", zap.Error(err))
		} else if !ok {
			jc.logger.Warn("scrape rate limit hit, skipping check")
			return nil
		}
	}

	criteria := filters.FromProfile(profile)

	res, err := jc.scraper.RunBasic(ctx, criteria)
	if err != nil {
		return fmt.Errorf("run scrape: %w", err)
	}
	if res.Rejected {
		jc.logger.Info("scrape already running, skipping check")
		return nil
	}

	snap := jc.results.Snapshot()
	if snap.Err != nil {
		return fmt.Errorf("refreshed results: %w", snap.Err)
	}
	if len(snap.Jobs) == 0 {
		jc.logger.Debug("no jobs found")
		return nil
	}

	unseenIDs, err := jc.store.GetUnseenJobs(ctx, jc.profile, models.ExtractJobIDs(snap.Jobs))
	if err != nil {
		return fmt.Errorf("get unseen jobs: %w", err)
	}
	if len(unseenIDs) == 0 {
		jc.logger.Debug("no new jobs")
		return nil
	}

	unseen := make(map[int64]bool, len(unseenIDs))
	for _, id := range unseenIDs {
		unseen[id] = true
	}

	var newJobs []models.Job
	for _, job := range snap.Jobs {
		if unseen[job.ID] {
			newJobs = append(newJobs, job)
		}
	}

	delivered, notifyErr := jc.notifier.NotifyJobs(ctx, jc.profile, newJobs)
	if len(delivered) > 0 {
		if err := jc.store.MarkJobsSeen(ctx, jc.profile, delivered); err != nil {
			return fmt.Errorf("mark jobs seen: %w", err)
		}
	}
	if notifyErr != nil {
		return fmt.Errorf("send notifications: %w", notifyErr)
	}

	if skipped := len(newJobs) - len(delivered); skipped > 0 {
		jc.logger.Warn("some jobs were not delivered, retrying next check", zap.Int("count", skipped))
	}
	jc.logger.Info("sent new jobs", zap.Int("count", len(delivered)))

	return nil
}
