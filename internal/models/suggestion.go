package models

import "fmt"

// Field names one suggestion channel.
type Field string

const (
	FieldKeyword  Field = "keyword"
	FieldCompany  Field = "company"
	FieldLocation Field = "location"
)

func Fields() []Field {
	return []Field{FieldKeyword, FieldCompany, FieldLocation}
}

func ParseField(s string) (Field, error) {
	f := Field(s)
	switch f {
	case FieldKeyword, FieldCompany, FieldLocation:
		return f, nil
	}
	return "", fmt.Errorf("unknown suggestion field %q", s)
}

// SuggestPath is the backend endpoint serving suggestions for the field.
func (f Field) SuggestPath() string {
	switch f {
	case FieldCompany:
		return "/suggest/companies"
	case FieldLocation:
		return "/suggest/locations"
	default:
		return "/suggest/keywords"
	}
}

// SuggestionRequest is one debounced lookup attempt. Never persisted.
type SuggestionRequest struct {
	Field      Field
	Text       string
	Limit      int
	Generation uint64
}

// SuggestionResult is bound to exactly one field and one request generation.
type SuggestionResult struct {
	Field      Field
	Generation uint64
	Items      []string
}
