// Package filters holds the canonical search criteria.
//
// A State is a value: it is never mutated in place. Every change goes
// through Apply (or Store.Patch), which returns a whole new State built from
// the old one and a Patch.
package filters

import (
	"net/url"
	"strconv"
	"strings"

	"jobwatch/internal/models"
)

const (
	DefaultMaxPages = 10
	MaxMaxPages     = 50
)

// State is the set of active filters. Nil optional fields are absent and
// never appear in query strings.
type State struct {
	Keyword  *string
	Company  *string
	Location *string
	OrderBy  models.OrderBy
	MaxPages int
}

// Value is a patch entry for an optional field. A nil *Value leaves the
// field untouched; Clear() (or Set("")) removes it.
type Value struct {
	v *string
}

func Set(s string) *Value {
	return &Value{v: &s}
}

func Clear() *Value {
	return &Value{}
}

type Patch struct {
	Keyword  *Value
	Company  *Value
	Location *Value
	OrderBy  *models.OrderBy
	MaxPages *int
}

func New() State {
	return State{OrderBy: models.OrderNewest, MaxPages: DefaultMaxPages}
}

// Apply returns old shallow-merged with p. Omitted keys are kept.
func (s State) Apply(p Patch) State {
	next := s
	next.Keyword = merge(s.Keyword, p.Keyword)
	next.Company = merge(s.Company, p.Company)
	next.Location = merge(s.Location, p.Location)
	if p.OrderBy != nil {
		next.OrderBy = *p.OrderBy
	}
	if p.MaxPages != nil {
		next.MaxPages = *p.MaxPages
	}
	return next.Normalize()
}

func merge(old *string, upd *Value) *string {
	if upd == nil {
		return old
	}
	if upd.v == nil {
		return nil
	}
	v := strings.TrimSpace(*upd.v)
	if v == "" {
		return nil
	}
	return &v
}

// Normalize clamps MaxPages and defaults an unknown order.
func (s State) Normalize() State {
	if s.MaxPages < 1 {
		s.MaxPages = DefaultMaxPages
	} else if s.MaxPages > MaxMaxPages {
		s.MaxPages = MaxMaxPages
	}
	if !s.OrderBy.IsValid() {
		s.OrderBy = models.OrderNewest
	}
	return s
}

// QueryParams projects the state to backend parameter names.
func (s State) QueryParams() url.Values {
	s = s.Normalize()
	params := url.Values{}
	if s.Keyword != nil {
		params.Set("keyword", *s.Keyword)
	}
	if s.Company != nil {
		params.Set("company", *s.Company)
	}
	if s.Location != nil {
		params.Set("location", *s.Location)
	}
	params.Set("order_by", string(s.OrderBy))
	params.Set("max_pages", strconv.Itoa(s.MaxPages))
	return params
}

func (s State) KeywordValue() string  { return models.StringValue(s.Keyword) }
func (s State) CompanyValue() string  { return models.StringValue(s.Company) }
func (s State) LocationValue() string { return models.StringValue(s.Location) }

// Equal compares two states field by field.
func (s State) Equal(o State) bool {
	return eqPtr(s.Keyword, o.Keyword) &&
		eqPtr(s.Company, o.Company) &&
		eqPtr(s.Location, o.Location) &&
		s.OrderBy == o.OrderBy &&
		s.MaxPages == o.MaxPages
}

func eqPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FromProfile rebuilds a state from a persisted profile.
func FromProfile(p *models.FilterProfile) State {
	s := State{
		Keyword:  copyPtr(p.Keyword),
		Company:  copyPtr(p.Company),
		Location: copyPtr(p.Location),
		OrderBy:  models.OrderBy(p.OrderBy),
		MaxPages: p.MaxPages,
	}
	return s.Normalize()
}

// ToProfile is the inverse of FromProfile.
func (s State) ToProfile(name string) *models.FilterProfile {
	s = s.Normalize()
	return &models.FilterProfile{
		Name:     name,
		Keyword:  copyPtr(s.Keyword),
		Company:  copyPtr(s.Company),
		Location: copyPtr(s.Location),
		OrderBy:  string(s.OrderBy),
		MaxPages: s.MaxPages,
	}
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
