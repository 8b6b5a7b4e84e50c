package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/naka-gawa/github-report/internal/domain"
	"github.com/naka-gawa/github-report/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	// chartRenders counts chart builds by chart and outcome (ok, fit_error, error).
	chartRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ghreport_chart_renders_total",
		Help: "Total chart renders by chart and outcome",
	}, []string{"chart", "outcome"})

	chartRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ghreport_chart_render_duration_seconds",
		Help:    "Chart aggregation and render duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"chart"})
)

// ErrUnknownChart is returned for chart IDs no section produces.
var ErrUnknownChart = errors.New("unknown chart")

// Options tunes the aggregations behind the charts.
type Options struct {
	TopN          int
	HistogramBins int
	// DensityPoints is the resolution of the density overlay and fitted curve.
	DensityPoints int
}

// DefaultOptions mirrors the fixed report layout.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, HistogramBins: DefaultBins, DensityPoints: 100}
}

// Chart is one rendered chart with its commentary. Err is set, and the
// artifact has no image, when the chart could not be produced.
type Chart struct {
	render.Artifact
	Narrative string `json:"narrative"`
	Err       error  `json:"-"`
}

// Degraded reports whether the chart failed because its curve fit failed.
func (c Chart) Degraded() bool {
	var fe *domain.FitError
	return errors.As(c.Err, &fe)
}

// SectionReport holds the charts of one navigation section.
type SectionReport struct {
	Section  Section      `json:"section"`
	Title    string       `json:"title"`
	Category domain.Field `json:"category,omitempty"`
	Charts   []Chart      `json:"charts"`
	// TotalContributors is only set for the contributor section.
	TotalContributors int `json:"total_contributors,omitempty"`
}

// Reporter recomputes and renders report sections from a read-only dataset.
type Reporter struct {
	dataset  domain.Dataset
	renderer render.Renderer
	logger   *log.Logger
	opts     Options
}

// NewReporter creates a new Reporter instance.
func NewReporter(ds domain.Dataset, renderer render.Renderer, logger *log.Logger, opts Options) *Reporter {
	def := DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = def.HistogramBins
	}
	if opts.DensityPoints < 2 {
		opts.DensityPoints = def.DensityPoints
	}
	return &Reporter{dataset: ds, renderer: renderer, logger: logger, opts: opts}
}

// Dataset returns the dataset the reporter reads from.
func (r *Reporter) Dataset() domain.Dataset {
	return r.dataset
}

// Top returns the "top repositories" selection for category without drawing it.
func (r *Reporter) Top(category domain.Field) (Selection, error) {
	return Select(r.dataset, category, r.opts.TopN)
}

// Correlation returns the correlation matrix over every numeric field.
func (r *Reporter) Correlation() CorrMatrix {
	return CorrelationMatrix(r.dataset, domain.NumericFields...)
}

// Section renders every chart of a section. A failed chart is reported in its
// Chart.Err and does not stop the others.
func (r *Reporter) Section(ctx context.Context, section Section, category domain.Field) (*SectionReport, error) {
	if category == "" {
		category = domain.FieldStars
	}
	if _, err := domain.ParseField(string(category)); err != nil {
		return nil, err
	}
	ids, err := SectionCharts(section, category)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("Usecase: rendering section %s (%d charts)...", section, len(ids))

	rep := &SectionReport{Section: section, Title: section.Title(), Charts: make([]Chart, 0, len(ids))}
	if section == SectionActivity {
		rep.Category = category
	}
	if section == SectionContributors {
		rep.TotalContributors = int(SumFields(r.dataset, domain.FieldContributors)[0].Sum)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep.Charts = append(rep.Charts, r.Chart(id))
	}
	return rep, nil
}

// All renders every section concurrently. The dataset is never written, so
// the sections share it without locking.
func (r *Reporter) All(ctx context.Context, category domain.Field) ([]*SectionReport, error) {
	reports := make([]*SectionReport, len(Sections))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, s := range Sections {
		i, s := i, s
		eg.Go(func() error {
			rep, err := r.Section(egCtx, s, category)
			if err != nil {
				return fmt.Errorf("section %s: %w", s, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Chart recomputes and renders a single chart by ID.
func (r *Reporter) Chart(id string) Chart {
	start := time.Now()
	art, err := r.build(id)
	chartRenderDuration.WithLabelValues(metricChartLabel(id)).Observe(time.Since(start).Seconds())

	c := Chart{Artifact: art, Narrative: render.Narrative(id), Err: err}
	c.ID = id
	switch {
	case err == nil:
		chartRenders.WithLabelValues(metricChartLabel(id), "ok").Inc()
	case c.Degraded():
		chartRenders.WithLabelValues(metricChartLabel(id), "fit_error").Inc()
		r.logger.Printf("Usecase: chart %s degraded: %v", id, err)
	default:
		chartRenders.WithLabelValues(metricChartLabel(id), "error").Inc()
		r.logger.Printf("Usecase: chart %s failed: %v", id, err)
	}
	return c
}

// metricChartLabel keeps label cardinality bounded for unknown IDs.
func metricChartLabel(id string) string {
	if KnownChart(id) {
		return id
	}
	return "unknown"
}

// KnownChart reports whether id names a chart of some section.
func KnownChart(id string) bool {
	if cat, ok := strings.CutPrefix(id, topChartPrefix); ok && id != ChartTopPopular {
		_, err := domain.ParseField(cat)
		return err == nil
	}
	for _, s := range Sections {
		ids, _ := SectionCharts(s, domain.FieldStars)
		for _, known := range ids {
			if known == id {
				return true
			}
		}
	}
	return false
}

func (r *Reporter) build(id string) (render.Artifact, error) {
	ds := r.dataset
	switch id {
	case ChartActivityTotals:
		totals := SumFields(ds, domain.FieldStars, domain.FieldForks, domain.FieldIssues, domain.FieldPullRequests)
		bars := make([]render.Bar, len(totals))
		for i, t := range totals {
			bars[i] = render.Bar{Label: t.Field.Label(), Value: t.Sum}
		}
		return r.renderer.VerticalBar(render.BarSpec{
			ID:     id,
			Title:  "Count of Stars, Forks, Issues, and Pull Requests",
			XLabel: "Activity",
			YLabel: "Count",
			Bars:   bars,
		})

	case ChartStarsDistribution, ChartForksDistribution:
		field := domain.FieldStars
		if id == ChartForksDistribution {
			field = domain.FieldForks
		}
		h := HistogramOf(ds, field, r.opts.HistogramBins)
		dx, dy := h.Density(ds.Values(field), r.opts.DensityPoints)
		return r.renderer.Histogram(render.HistogramSpec{
			ID:       id,
			Title:    fmt.Sprintf("Distribution of %s Count in GitHub Repositories", field.Label()),
			XLabel:   field.Label() + " Count",
			YLabel:   "Frequency",
			Edges:    h.Edges,
			Counts:   h.Counts,
			DensityX: dx,
			DensityY: dy,
		})

	case ChartTopPopular:
		top := TopNBy(ds, r.opts.TopN, domain.FieldStars, domain.FieldForks)
		spec := render.DualAxisSpec{
			ID:            id,
			Title:         fmt.Sprintf("The Forks Count For the Top %d Popular Repositories", r.opts.TopN),
			XLabel:        "Repository",
			PrimaryName:   "Stars",
			SecondaryName: "Forks",
		}
		// Most popular first.
		for i := len(top) - 1; i >= 0; i-- {
			spec.Labels = append(spec.Labels, top[i].Name)
			spec.Primary = append(spec.Primary, float64(top[i].Stars))
			spec.Secondary = append(spec.Secondary, float64(top[i].Forks))
		}
		return r.renderer.DualAxis(spec)

	case ChartContributionTypes:
		totals := SumFields(ds, domain.FieldPullRequests, domain.FieldIssues)
		return r.renderer.Pie(render.PieSpec{
			ID:    id,
			Title: "Distribution of Contribution Types",
			Slices: []render.Bar{
				{Label: "Pull Requests", Value: totals[0].Sum},
				{Label: "Issues", Value: totals[1].Sum},
			},
		})

	case ChartLanguageDistribution:
		counts := ValueCounts(ds, domain.FieldLanguage).Known()
		bars := make([]render.Bar, len(counts))
		for i, c := range counts {
			bars[i] = render.Bar{Label: c.Value, Value: float64(c.Count)}
		}
		return r.renderer.VerticalBar(render.BarSpec{
			ID:     id,
			Title:  "Distribution of Programming Languages",
			XLabel: "Programming Languages",
			YLabel: "Count",
			Color:  "90ee90",
			Bars:   bars,
		})

	case ChartForksVsStars:
		fit, err := FitSqrt(ds)
		if err != nil {
			return render.Artifact{ID: id, Kind: render.KindScatter, Title: "Forks vs Stars in GitHub Repositories"}, err
		}
		xs := ds.Values(domain.FieldForks)
		lo, hi := minMax(xs)
		cx, cy := fit.Curve(lo, hi, r.opts.DensityPoints)
		return r.renderer.Scatter(render.ScatterSpec{
			ID:        id,
			Title:     "Forks vs Stars in GitHub Repositories",
			XLabel:    "Forks Count",
			YLabel:    "Stars Count",
			X:         xs,
			Y:         ds.Values(domain.FieldStars),
			CurveName: "Curve Fit",
			CurveX:    cx,
			CurveY:    cy,
		})

	case ChartCorrelationMatrix:
		m := CorrelationMatrix(ds, domain.NumericFields...)
		spec := render.HeatmapSpec{ID: id, Title: "Correlation Matrix of GitHub Dataset"}
		for i, f := range m.Fields {
			spec.Labels = append(spec.Labels, string(f))
			row := make([]render.Cell, len(m.Fields))
			for j := range m.Fields {
				c := m.At(i, j)
				row[j] = render.Cell{Value: c.Value, Defined: c.Defined}
			}
			spec.Cells = append(spec.Cells, row)
		}
		return r.renderer.Heatmap(spec)
	}

	if cat, ok := strings.CutPrefix(id, topChartPrefix); ok {
		category, err := domain.ParseField(cat)
		if err != nil {
			return render.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownChart, id)
		}
		return r.renderTop(id, category)
	}
	return render.Artifact{}, fmt.Errorf("%w: %s", ErrUnknownChart, id)
}

func (r *Reporter) renderTop(id string, category domain.Field) (render.Artifact, error) {
	sel, err := Select(r.dataset, category, r.opts.TopN)
	if err != nil {
		return render.Artifact{}, err
	}
	spec := render.BarSpec{
		ID:     id,
		Title:  fmt.Sprintf("Top %d Repositories by %s Count", r.opts.TopN, category.Label()),
		XLabel: "Count",
		YLabel: "Repository",
	}
	if category == domain.FieldLanguage {
		spec.Title = fmt.Sprintf("Top %d Languages Used in Repositories", r.opts.TopN)
		spec.YLabel = "Language"
		for _, c := range sel.Languages {
			spec.Bars = append(spec.Bars, render.Bar{Label: c.Value, Value: float64(c.Count)})
		}
	} else {
		for _, rec := range sel.Records {
			spec.Bars = append(spec.Bars, render.Bar{Label: rec.Name, Value: rec.Value(category)})
		}
	}
	return r.renderer.HorizontalBar(spec)
}

func minMax(values []float64) (lo, hi float64) {
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}
