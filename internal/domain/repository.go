// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a field or category name is not recognised.
var ErrUnknownField = errors.New("unknown field")

// Field names a column of the repository dataset.
type Field string

const (
	FieldStars        Field = "stars"
	FieldForks        Field = "forks"
	FieldIssues       Field = "issues"
	FieldPullRequests Field = "pull_requests"
	FieldContributors Field = "contributors"
	FieldLanguage     Field = "language"
)

// NumericFields lists the integer-valued fields in their canonical order.
var NumericFields = []Field{FieldStars, FieldForks, FieldIssues, FieldPullRequests, FieldContributors}

// Categories lists the values offered by the "top repositories" selector.
var Categories = []Field{FieldStars, FieldForks, FieldIssues, FieldPullRequests, FieldContributors, FieldLanguage}

// ParseField converts a user supplied name into a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Categories {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// IsNumeric reports whether the field holds integer counts.
func (f Field) IsNumeric() bool {
	for _, n := range NumericFields {
		if f == n {
			return true
		}
	}
	return false
}

// Label returns a human readable title, e.g. "Pull Requests".
func (f Field) Label() string {
	switch f {
	case FieldStars:
		return "Stars"
	case FieldForks:
		return "Forks"
	case FieldIssues:
		return "Issues"
	case FieldPullRequests:
		return "Pull Requests"
	case FieldContributors:
		return "Contributors"
	case FieldLanguage:
		return "Language"
	}
	return string(f)
}

// Record holds the metrics for a single repository.
// It is the core domain entity of this application.
type Record struct {
	Name         string `json:"name"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
	Issues       int    `json:"issues"`
	PullRequests int    `json:"pull_requests"`
	Contributors int    `json:"contributors"`
	// Language is empty when the source row had no value.
	Language string `json:"language,omitempty"`
}

// Value returns the numeric value of f. Non-numeric fields yield 0.
func (r Record) Value(f Field) float64 {
	switch f {
	case FieldStars:
		return float64(r.Stars)
	case FieldForks:
		return float64(r.Forks)
	case FieldIssues:
		return float64(r.Issues)
	case FieldPullRequests:
		return float64(r.PullRequests)
	case FieldContributors:
		return float64(r.Contributors)
	}
	return 0
}

// Dataset is the ordered, read-only collection of records loaded at startup.
type Dataset []Record

// Values extracts the numeric column f in dataset order.
func (d Dataset) Values(f Field) []float64 {
	out := make([]float64, len(d))
	for i, r := range d {
		out[i] = r.Value(f)
	}
	return out
}
