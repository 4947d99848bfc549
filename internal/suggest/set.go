package suggest

import (
	"fmt"

	"jobwatch/internal/debounce"
	"jobwatch/internal/models"

	"go.uber.org/zap"
)

// Set groups the keyword, company and location controllers over one
// debouncer (keyed by field name).
type Set struct {
	debouncer   *debounce.Debouncer
	controllers map[models.Field]*Controller
}

func NewSet(fetcher Fetcher, opts Options, logger *zap.Logger) *Set {
	d := debounce.New()
	s := &Set{
		debouncer:   d,
		controllers: make(map[models.Field]*Controller, 3),
	}
	for _, f := range models.Fields() {
		s.controllers[f] = NewController(f, fetcher, d, opts, logger)
	}
	return s
}

func (s *Set) Get(field models.Field) (*Controller, error) {
	c, ok := s.controllers[field]
	if !ok {
		return nil, fmt.Errorf("no suggestion controller for field %q", field)
	}
	return c, nil
}

func (s *Set) OnInputChange(field models.Field, text string) error {
	c, err := s.Get(field)
	if err != nil {
		return err
	}
	c.OnInputChange(text)
	return nil
}

func (s *Set) Suggestions(field models.Field) []string {
	c, ok := s.controllers[field]
	if !ok {
		return nil
	}
	return c.Suggestions()
}

func (s *Set) Stop() {
	s.debouncer.Stop()
}
