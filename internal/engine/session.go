// Package engine composes the filter store, the suggestion controllers, the
// result controller and the scrape workflow into one search session.
package engine

import (
	"context"
	"fmt"
	"time"

	"jobwatch/internal/filters"
	"jobwatch/internal/models"
	"jobwatch/internal/results"
	"jobwatch/internal/scrape"
	"jobwatch/internal/suggest"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend is everything a session needs from the jobs API.
type Backend interface {
	suggest.Fetcher
	results.Searcher
	scrape.Scraper
}

type Options struct {
	SuggestWindow time.Duration
	SuggestLimit  int
	Timeout       time.Duration
	FilesBaseURL  string
	Cache         suggest.Cache
	Initial       filters.State

	OnSuggestions func(models.SuggestionResult)
	OnResults     func(results.Snapshot)
	OnScrape      func(scrape.Status)
}

// View is a point-in-time copy of everything the session shows.
type View struct {
	Criteria    filters.State
	Results     results.Snapshot
	Scrape      scrape.Status
	Suggestions map[models.Field][]string
}

type Session struct {
	id          string
	store       *filters.Store
	suggestions *suggest.Set
	results     *results.Controller
	workflow    *scrape.Workflow
	logger      *zap.Logger
}

func New(backend Backend, opts Options, logger *zap.Logger) *Session {
	id := uuid.NewString()
	logger = logger.With(zap.String("session_id", id))

	initial := opts.Initial
	if initial.MaxPages == 0 {
		initial = filters.New()
	}

	s := &Session{
		id:     id,
		store:  filters.NewStore(initial),
		logger: logger,
	}

	s.suggestions = suggest.NewSet(backend, suggest.Options{
		Window:   opts.SuggestWindow,
		Limit:    opts.SuggestLimit,
		Timeout:  opts.Timeout,
		Cache:    opts.Cache,
		OnUpdate: opts.OnSuggestions,
	}, logger)

	s.results = results.NewController(backend, opts.Timeout, opts.OnResults, logger)
	s.workflow = scrape.NewWorkflow(backend, s.results, opts.FilesBaseURL, opts.OnScrape, logger)

	s.store.Subscribe(s.results.OnCriteriaChange)

	return s
}

func (s *Session) ID() string { return s.id }

// Start issues the search for the initial criteria.
func (s *Session) Start() {
	s.results.OnCriteriaChange(s.store.Current())
}

// OnInput records text typed into a filter field: the filter is patched
// (which re-runs the search) and the field's suggestions are refreshed.
func (s *Session) OnInput(field models.Field, text string) error {
	p, err := fieldPatch(field, filters.Set(text))
	if err != nil {
		return err
	}
	if err := s.suggestions.OnInputChange(field, text); err != nil {
		return err
	}
	s.store.Patch(p)
	return nil
}

// Choose applies a picked suggestion and closes the field's suggestion list.
func (s *Session) Choose(field models.Field, value string) error {
	p, err := fieldPatch(field, filters.Set(value))
	if err != nil {
		return err
	}
	if err := s.suggestions.OnInputChange(field, ""); err != nil {
		return err
	}
	s.store.Patch(p)
	return nil
}

func (s *Session) Clear(field models.Field) error {
	p, err := fieldPatch(field, filters.Clear())
	if err != nil {
		return err
	}
	if err := s.suggestions.OnInputChange(field, ""); err != nil {
		return err
	}
	s.store.Patch(p)
	return nil
}

func (s *Session) Patch(p filters.Patch) filters.State {
	return s.store.Patch(p)
}

func (s *Session) SetOrder(order models.OrderBy) filters.State {
	return s.store.Patch(filters.Patch{OrderBy: &order})
}

func (s *Session) SetMaxPages(n int) filters.State {
	return s.store.Patch(filters.Patch{MaxPages: &n})
}

func (s *Session) RunScrape(ctx context.Context) (scrape.Result, error) {
	return s.workflow.RunBasic(ctx, s.store.Current())
}

func (s *Session) RunAdvancedScrape(ctx context.Context, opts scrape.Options) (scrape.Result, error) {
	return s.workflow.RunAdvanced(ctx, s.store.Current(), opts)
}

func (s *Session) Criteria() filters.State { return s.store.Current() }

func (s *Session) Results() results.Snapshot { return s.results.Snapshot() }

func (s *Session) View() View {
	v := View{
		Criteria:    s.store.Current(),
		Results:     s.results.Snapshot(),
		Scrape:      s.workflow.Status(),
		Suggestions: make(map[models.Field][]string, 3),
	}
	for _, f := range models.Fields() {
		v.Suggestions[f] = s.suggestions.Suggestions(f)
	}
	return v
}

func (s *Session) Close() {
	s.suggestions.Stop()
	s.logger.Debug("session closed")
}

func fieldPatch(field models.Field, v *filters.Value) (filters.Patch, error) {
	switch field {
	case models.FieldKeyword:
		return filters.Patch{Keyword: v}, nil
	case models.FieldCompany:
		return filters.Patch{Company: v}, nil
	case models.FieldLocation:
		return filters.Patch{Location: v}, nil
	default:
		return filters.Patch{}, fmt.Errorf("unknown filter field %q", field)
	}
}
