package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	skyBlue = drawing.ColorFromHex("87ceeb")
	barBlue = drawing.Color{R: 0, G: 0, B: 255, A: 178}
)

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    col,
	}
}

// paddedRange returns a non-degenerate axis range covering [lo, hi].
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		lo, hi = 0, 1
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// countRange starts at zero and always spans a positive interval.
func countRange(values ...float64) *chart.ContinuousRange {
	hi := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
	}
	if hi == 0 {
		hi = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: hi * 1.05}
}

func encode(c interface {
	Render(chart.RendererProvider, io.Writer) error
}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// VerticalBar draws one bar per entry with go-chart's bar chart.
func (p *PNGRenderer) VerticalBar(spec BarSpec) (Artifact, error) {
	if len(spec.Bars) == 0 {
		return Artifact{}, fmt.Errorf("render %s: no bars", spec.ID)
	}
	fill := skyBlue
	if spec.Color != "" {
		fill = drawing.ColorFromHex(spec.Color)
	}
	values := make([]chart.Value, len(spec.Bars))
	maxV := 0.0
	for i, b := range spec.Bars {
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
		maxV = math.Max(maxV, b.Value)
	}

	usable := p.width - 120
	barWidth := usable/len(values) - 4
	if barWidth < 4 {
		barWidth = 4
	}
	rotation := 45.0
	if len(values) > 12 {
		rotation = 90
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      p.width,
		Height:     p.height,
		BarWidth:   barWidth,
		BarSpacing: 4,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 120}},
		XAxis:      chart.Style{TextRotationDegrees: rotation},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Range: countRange(maxV),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: values,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindVerticalBar, Title: spec.Title, PNG: buf.Bytes()}, nil
}

// stepPolygon returns the outline of bars [left_i, right_i] x [0, height_i]
// as one filled series; consecutive bars meet on the baseline.
func stepPolygon(lefts, rights, heights []float64) (xs, ys []float64) {
	for i := range heights {
		xs = append(xs, lefts[i], lefts[i], rights[i], rights[i])
		ys = append(ys, 0, heights[i], heights[i], 0)
	}
	return xs, ys
}

// Histogram draws binned counts as a filled step outline and overlays the
// density curve when present.
func (p *PNGRenderer) Histogram(spec HistogramSpec) (Artifact, error) {
	if len(spec.Counts) == 0 || len(spec.Edges) != len(spec.Counts)+1 {
		return Artifact{}, fmt.Errorf("render %s: %d edges for %d bins", spec.ID, len(spec.Edges), len(spec.Counts))
	}
	heights := make([]float64, len(spec.Counts))
	maxC := 0.0
	for i, c := range spec.Counts {
		heights[i] = float64(c)
		maxC = math.Max(maxC, heights[i])
	}
	for _, y := range spec.DensityY {
		maxC = math.Max(maxC, y)
	}
	xs, ys := stepPolygon(spec.Edges[:len(spec.Edges)-1], spec.Edges[1:], heights)

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Frequency",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 1,
				FillColor:   chart.ColorBlue.WithAlpha(100),
			},
		},
	}
	if len(spec.DensityX) > 1 && len(spec.DensityX) == len(spec.DensityY) {
		series = append(series, chart.ContinuousSeries{
			Name:    "Density",
			XValues: spec.DensityX,
			YValues: spec.DensityY,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
		})
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: paddedRange(spec.Edges[0], spec.Edges[len(spec.Edges)-1])},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: countRange(maxC)},
		Series:     series,
	}
	data, err := encode(&ch)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindHistogram, Title: spec.Title, PNG: data}, nil
}

// Scatter draws data points and, when present, a dashed fitted curve.
func (p *PNGRenderer) Scatter(spec ScatterSpec) (Artifact, error) {
	if len(spec.X) == 0 || len(spec.X) != len(spec.Y) {
		return Artifact{}, fmt.Errorf("render %s: %d x values for %d y values", spec.ID, len(spec.X), len(spec.Y))
	}
	xlo, xhi := bounds(spec.X, spec.CurveX)
	ylo, yhi := bounds(spec.Y, spec.CurveY)

	series := []chart.Series{
		chart.ContinuousSeries{Name: "Data Points", XValues: spec.X, YValues: spec.Y, Style: pointStyle(chart.ColorBlue)},
	}
	if len(spec.CurveX) > 1 && len(spec.CurveX) == len(spec.CurveY) {
		series = append(series, chart.ContinuousSeries{
			Name:    spec.CurveName,
			XValues: spec.CurveX,
			YValues: spec.CurveY,
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		})
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: paddedRange(xlo, xhi)},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: paddedRange(ylo, yhi)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	data, err := encode(&ch)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindScatter, Title: spec.Title, PNG: data}, nil
}

// DualAxis draws the primary values as bars on the left axis and the
// secondary values as a marked line on the right axis.
func (p *PNGRenderer) DualAxis(spec DualAxisSpec) (Artifact, error) {
	n := len(spec.Labels)
	if n == 0 || len(spec.Primary) != n || len(spec.Secondary) != n {
		return Artifact{}, fmt.Errorf("render %s: mismatched series lengths", spec.ID)
	}
	lefts := make([]float64, n)
	rights := make([]float64, n)
	centers := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i, label := range spec.Labels {
		centers[i] = float64(i)
		lefts[i] = centers[i] - 0.35
		rights[i] = centers[i] + 0.35
		ticks[i] = chart.Tick{Value: centers[i], Label: label}
	}
	bx, by := stepPolygon(lefts, rights, spec.Primary)

	lineStyle := pointStyle(chart.ColorRed)
	lineStyle.StrokeColor = chart.ColorRed
	lineStyle.StrokeWidth = 2
	lineStyle.DotWidth = 4

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 120}},
		XAxis: chart.XAxis{
			Name:  spec.XLabel,
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.6, Max: float64(n) - 0.4},
			Style: chart.Style{TextRotationDegrees: 45},
		},
		YAxis:          chart.YAxis{Name: spec.PrimaryName, Range: countRange(spec.Primary...)},
		YAxisSecondary: chart.YAxis{Name: spec.SecondaryName, Range: countRange(spec.Secondary...)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.PrimaryName,
				XValues: bx,
				YValues: by,
				Style:   chart.Style{StrokeColor: barBlue, StrokeWidth: 1, FillColor: barBlue},
			},
			chart.ContinuousSeries{
				Name:    spec.SecondaryName,
				YAxis:   chart.YAxisSecondary,
				XValues: centers,
				YValues: spec.Secondary,
				Style:   lineStyle,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	data, err := encode(&ch)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindDualAxis, Title: spec.Title, PNG: data}, nil
}

// Pie draws the slices with their share of the total appended to each label.
func (p *PNGRenderer) Pie(spec PieSpec) (Artifact, error) {
	total := 0.0
	for _, s := range spec.Slices {
		total += s.Value
	}
	if total <= 0 {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, errors.New("pie needs a positive total"))
	}
	values := make([]chart.Value, len(spec.Slices))
	for i, s := range spec.Slices {
		values[i] = chart.Value{Label: fmt.Sprintf("%s %.1f%%", s.Label, 100*s.Value/total), Value: s.Value}
	}
	pc := chart.PieChart{
		Title:  spec.Title,
		Width:  p.height,
		Height: p.height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindPie, Title: spec.Title, PNG: buf.Bytes()}, nil
}

func bounds(sets ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, set := range sets {
		for _, v := range set {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}
