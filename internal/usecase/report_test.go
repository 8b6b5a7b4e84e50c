package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockRenderer is a mock implementation of the render.Renderer interface.
// It records the specs the reporter builds without drawing anything.
type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) HorizontalBar(spec render.BarSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) VerticalBar(spec render.BarSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) Histogram(spec render.HistogramSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) Scatter(spec render.ScatterSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) DualAxis(spec render.DualAxisSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) Pie(spec render.PieSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func (m *mockRenderer) Heatmap(spec render.HeatmapSpec) (render.Artifact, error) {
	args := m.Called(spec)
	return args.Get(0).(render.Artifact), args.Error(1)
}

func fakeArtifact(id string, kind render.Kind) render.Artifact {
	return render.Artifact{ID: id, Kind: kind, PNG: []byte{0x89, 'P', 'N', 'G'}}
}

func newTestReporter(ds domain.Dataset, r render.Renderer) *Reporter {
	return NewReporter(ds, r, log.New(io.Discard, "", 0), Options{TopN: 2})
}

func chartIDs(charts []Chart) []string {
	out := make([]string, len(charts))
	for i, c := range charts {
		out[i] = c.ID
	}
	return out
}

func TestReporter_ActivitySection(t *testing.T) {
	m := new(mockRenderer)
	m.On("HorizontalBar", mock.MatchedBy(func(s render.BarSpec) bool {
		return s.ID == "top-forks" &&
			len(s.Bars) == 2 &&
			s.Bars[0] == render.Bar{Label: "hundred", Value: 100} &&
			s.Bars[1] == render.Bar{Label: "four-hundred", Value: 400}
	})).Return(fakeArtifact("top-forks", render.KindHorizontalBar), nil).Once()
	m.On("VerticalBar", mock.MatchedBy(func(s render.BarSpec) bool {
		return s.ID == ChartActivityTotals && len(s.Bars) == 4 && s.Bars[0].Value == 115 && s.Bars[1].Value == 500
	})).Return(fakeArtifact(ChartActivityTotals, render.KindVerticalBar), nil).Once()
	m.On("Histogram", mock.MatchedBy(func(s render.HistogramSpec) bool {
		return len(s.Counts) == DefaultBins && len(s.DensityX) == 100
	})).Return(fakeArtifact("", render.KindHistogram), nil).Twice()
	m.On("DualAxis", mock.MatchedBy(func(s render.DualAxisSpec) bool {
		return assert.ObjectsAreEqual([]string{"four-hundred", "hundred"}, s.Labels) &&
			assert.ObjectsAreEqual([]float64{60, 50}, s.Primary) &&
			assert.ObjectsAreEqual([]float64{400, 100}, s.Secondary)
	})).Return(fakeArtifact(ChartTopPopular, render.KindDualAxis), nil).Once()

	rep, err := newTestReporter(exampleDataset(), m).Section(context.Background(), SectionActivity, domain.FieldForks)
	require.NoError(t, err)

	assert.Equal(t, "1. Repository Activity Analysis", rep.Title)
	assert.Equal(t, domain.FieldForks, rep.Category)
	assert.Equal(t, []string{"top-forks", "activity-totals", "stars-distribution", "forks-distribution", "top-popular"}, chartIDs(rep.Charts))
	for _, c := range rep.Charts {
		assert.NoError(t, c.Err, c.ID)
		assert.NotEmpty(t, c.PNG, c.ID)
		assert.NotEmpty(t, c.Narrative, c.ID)
	}
	m.AssertExpectations(t)
}

func TestReporter_DefaultCategory(t *testing.T) {
	m := new(mockRenderer)
	m.On("HorizontalBar", mock.MatchedBy(func(s render.BarSpec) bool { return s.ID == "top-stars" })).
		Return(fakeArtifact("top-stars", render.KindHorizontalBar), nil)
	m.On("VerticalBar", mock.Anything).Return(fakeArtifact("", render.KindVerticalBar), nil)
	m.On("Histogram", mock.Anything).Return(fakeArtifact("", render.KindHistogram), nil)
	m.On("DualAxis", mock.Anything).Return(fakeArtifact("", render.KindDualAxis), nil)

	rep, err := newTestReporter(exampleDataset(), m).Section(context.Background(), SectionActivity, "")
	require.NoError(t, err)
	assert.Equal(t, domain.FieldStars, rep.Category)
	assert.Equal(t, "top-stars", rep.Charts[0].ID)
}

func TestReporter_TopLanguages(t *testing.T) {
	m := new(mockRenderer)
	m.On("HorizontalBar", mock.MatchedBy(func(s render.BarSpec) bool {
		return s.YLabel == "Language" &&
			assert.ObjectsAreEqual([]render.Bar{{Label: "Python", Value: 1}, {Label: "Go", Value: 2}}, s.Bars)
	})).Return(fakeArtifact("top-language", render.KindHorizontalBar), nil).Once()

	c := newTestReporter(exampleDataset(), m).Chart(TopChartID(domain.FieldLanguage))
	require.NoError(t, c.Err)
	m.AssertExpectations(t)
}

func TestReporter_ContributorSection(t *testing.T) {
	m := new(mockRenderer)
	m.On("Pie", render.PieSpec{
		ID:    ChartContributionTypes,
		Title: "Distribution of Contribution Types",
		Slices: []render.Bar{
			{Label: "Pull Requests", Value: 8},
			{Label: "Issues", Value: 7},
		},
	}).Return(fakeArtifact(ChartContributionTypes, render.KindPie), nil).Once()

	rep, err := newTestReporter(exampleDataset(), m).Section(context.Background(), SectionContributors, domain.FieldStars)
	require.NoError(t, err)
	assert.Equal(t, 12, rep.TotalContributors)
	assert.Empty(t, rep.Category)
	require.Len(t, rep.Charts, 1)
	assert.NoError(t, rep.Charts[0].Err)
	m.AssertExpectations(t)
}

func TestReporter_FeatureSection(t *testing.T) {
	testCases := []struct {
		name            string
		ds              domain.Dataset
		expectScatter   bool
		expectDegraded  bool
		expectUndefined bool
	}{
		{
			name:          "fit succeeds",
			ds:            exampleDataset(),
			expectScatter: true,
		},
		{
			name: "all-zero forks degrade the scatter chart only",
			ds: domain.Dataset{
				{Name: "a", Stars: 3, Issues: 1, PullRequests: 2, Contributors: 1, Language: "Go"},
				{Name: "b", Stars: 9, Issues: 4, PullRequests: 1, Contributors: 5, Language: "C"},
			},
			expectDegraded:  true,
			expectUndefined: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := new(mockRenderer)
			m.On("VerticalBar", mock.MatchedBy(func(s render.BarSpec) bool {
				return s.ID == ChartLanguageDistribution && s.Color != ""
			})).Return(fakeArtifact(ChartLanguageDistribution, render.KindVerticalBar), nil).Once()
			m.On("Heatmap", mock.MatchedBy(func(s render.HeatmapSpec) bool {
				if len(s.Cells) != len(domain.NumericFields) {
					return false
				}
				// forks is the second numeric field
				return s.Cells[1][0].Defined != tc.expectUndefined && s.Cells[1][1].Defined
			})).Return(fakeArtifact(ChartCorrelationMatrix, render.KindHeatmap), nil).Once()
			if tc.expectScatter {
				m.On("Scatter", mock.MatchedBy(func(s render.ScatterSpec) bool {
					return len(s.X) == len(tc.ds) && len(s.CurveX) == 100 && s.CurveX[0] == 0 && s.CurveX[99] == 400
				})).Return(fakeArtifact(ChartForksVsStars, render.KindScatter), nil).Once()
			}

			rep, err := newTestReporter(tc.ds, m).Section(context.Background(), SectionFeatures, domain.FieldStars)
			require.NoError(t, err)
			require.Equal(t, []string{"language-distribution", "forks-vs-stars", "correlation-matrix"}, chartIDs(rep.Charts))

			scatter := rep.Charts[1]
			assert.Equal(t, tc.expectDegraded, scatter.Degraded())
			if tc.expectDegraded {
				var fe *domain.FitError
				assert.True(t, errors.As(scatter.Err, &fe))
				assert.Empty(t, scatter.PNG)
				assert.Equal(t, render.KindScatter, scatter.Kind)
				m.AssertNotCalled(t, "Scatter", mock.Anything)
			} else {
				assert.NoError(t, scatter.Err)
			}
			assert.NoError(t, rep.Charts[0].Err)
			assert.NoError(t, rep.Charts[2].Err)
			m.AssertExpectations(t)
		})
	}
}

func TestReporter_RenderFailure(t *testing.T) {
	m := new(mockRenderer)
	m.On("Pie", mock.Anything).Return(render.Artifact{}, errors.New("pie needs a positive total"))

	c := newTestReporter(domain.Dataset{{Name: "quiet"}}, m).Chart(ChartContributionTypes)
	assert.Error(t, c.Err)
	assert.False(t, c.Degraded())
	assert.Equal(t, ChartContributionTypes, c.ID)
}

func TestReporter_Errors(t *testing.T) {
	r := newTestReporter(exampleDataset(), new(mockRenderer))

	t.Run("unknown chart", func(t *testing.T) {
		for _, id := range []string{"bogus", "top-watchers", "top-"} {
			c := r.Chart(id)
			assert.True(t, errors.Is(c.Err, ErrUnknownChart), id)
			assert.False(t, KnownChart(id), id)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := r.Section(context.Background(), Section("overview"), domain.FieldStars)
		assert.True(t, errors.Is(err, ErrUnknownSection))
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := r.Section(context.Background(), SectionActivity, domain.Field("watchers"))
		assert.True(t, errors.Is(err, domain.ErrUnknownField))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Section(ctx, SectionContributors, domain.FieldStars)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestKnownChart(t *testing.T) {
	for _, id := range []string{"top-stars", "top-language", "top-popular", "activity-totals", "correlation-matrix"} {
		assert.True(t, KnownChart(id), id)
	}
}

func TestReporter_All(t *testing.T) {
	r := NewReporter(exampleDataset(), render.NewPNGRenderer(640, 400), log.New(io.Discard, "", 0), DefaultOptions())

	reports, err := r.All(context.Background(), domain.FieldIssues)
	require.NoError(t, err)
	require.Len(t, reports, len(Sections))
	for i, rep := range reports {
		assert.Equal(t, Sections[i], rep.Section)
		ids, err := SectionCharts(rep.Section, domain.FieldIssues)
		require.NoError(t, err)
		assert.Equal(t, ids, chartIDs(rep.Charts))
		for _, c := range rep.Charts {
			require.NoError(t, c.Err, c.ID)
			assert.NotEmpty(t, c.PNG, c.ID)
		}
	}
}

func TestReporter_TopAndCorrelation(t *testing.T) {
	r := newTestReporter(exampleDataset(), new(mockRenderer))

	sel, err := r.Top(domain.FieldStars)
	require.NoError(t, err)
	assert.Equal(t, []string{"hundred", "four-hundred"}, names(sel.Records))

	_, err = r.Top(domain.Field("watchers"))
	assert.Error(t, err)

	m := r.Correlation()
	assert.Equal(t, domain.NumericFields, m.Fields)
	assert.Len(t, m.Cells, len(domain.NumericFields))
}
