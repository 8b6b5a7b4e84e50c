package usecase

import (
	"errors"
	"fmt"

	"github.com/naka-gawa/github-report/internal/domain"
)

// DefaultTopN is the number of entries shown by the "top" charts.
const DefaultTopN = 10

// ErrUnknownSection is returned for navigation values outside Sections.
var ErrUnknownSection = errors.New("unknown section")

// Selection is the aggregated data behind the "top repositories" chart.
// Exactly one of Records and Languages is populated.
type Selection struct {
	Category  domain.Field    `json:"category"`
	Records   []domain.Record `json:"records,omitempty"`
	Languages Counts          `json:"languages,omitempty"`
}

// Select routes a category to its aggregation. Language is categorical and is
// ranked by value count; every other category is ranked by TopNBy.
func Select(ds domain.Dataset, category domain.Field, n int) (Selection, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	if _, err := domain.ParseField(string(category)); err != nil {
		return Selection{}, err
	}
	if category == domain.FieldLanguage {
		return Selection{
			Category:  category,
			Languages: ValueCounts(ds, domain.FieldLanguage).Known().Top(n).Ascending(),
		}, nil
	}
	return Selection{Category: category, Records: TopNBy(ds, n, category)}, nil
}

// Section is one of the report's navigation entries.
type Section string

const (
	SectionActivity     Section = "activity"
	SectionContributors Section = "contributors"
	SectionFeatures     Section = "features"
)

// Sections lists the navigation entries in display order.
var Sections = []Section{SectionActivity, SectionContributors, SectionFeatures}

// ParseSection converts a navigation value into a Section.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

// Title returns the heading shown for the section.
func (s Section) Title() string {
	switch s {
	case SectionActivity:
		return "1. Repository Activity Analysis"
	case SectionContributors:
		return "2. Contributor Analysis"
	case SectionFeatures:
		return "3. Repository Feature Analysis"
	}
	return string(s)
}

// Chart identifiers.
const (
	ChartActivityTotals       = "activity-totals"
	ChartStarsDistribution    = "stars-distribution"
	ChartForksDistribution    = "forks-distribution"
	ChartTopPopular           = "top-popular"
	ChartContributionTypes    = "contribution-types"
	ChartLanguageDistribution = "language-distribution"
	ChartForksVsStars         = "forks-vs-stars"
	ChartCorrelationMatrix    = "correlation-matrix"

	topChartPrefix = "top-"
)

// TopChartID returns the identifier of the "top repositories" chart for category.
func TopChartID(category domain.Field) string {
	return topChartPrefix + string(category)
}

// SectionCharts lists the chart IDs of a section in display order. The
// category only affects the activity section.
func SectionCharts(s Section, category domain.Field) ([]string, error) {
	switch s {
	case SectionActivity:
		return []string{
			TopChartID(category),
			ChartActivityTotals,
			ChartStarsDistribution,
			ChartForksDistribution,
			ChartTopPopular,
		}, nil
	case SectionContributors:
		return []string{ChartContributionTypes}, nil
	case SectionFeatures:
		return []string{ChartLanguageDistribution, ChartForksVsStars, ChartCorrelationMatrix}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, s)
}
