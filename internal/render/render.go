// Package render turns aggregated data into PNG chart artifacts.
//
// Every call returns its own Artifact; renderers keep no current-figure state
// between calls, so one PNGRenderer can serve concurrent requests.
package render

// Kind is the visual form of a chart.
type Kind string

const (
	KindHorizontalBar Kind = "horizontal-bar"
	KindVerticalBar   Kind = "vertical-bar"
	KindHistogram     Kind = "histogram"
	KindScatter       Kind = "scatter"
	KindDualAxis      Kind = "dual-axis"
	KindPie           Kind = "pie"
	KindHeatmap       Kind = "heatmap"
)

// Artifact is a rendered chart.
type Artifact struct {
	ID    string `json:"id" yaml:"id"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Title string `json:"title" yaml:"title"`
	PNG   []byte `json:"-" yaml:"-"`
}

// Bar is one labelled value of a bar or pie chart.
type Bar struct {
	Label string
	Value float64
}

// BarSpec describes a horizontal or vertical bar chart.
type BarSpec struct {
	ID     string
	Title  string
	XLabel string
	YLabel string
	// Color is a hex fill for vertical bars; horizontal bars use a palette.
	Color string
	// Bars are drawn in order: bottom to top for horizontal charts, left to
	// right for vertical ones.
	Bars []Bar
}

// HistogramSpec describes binned counts with an optional density overlay.
type HistogramSpec struct {
	ID       string
	Title    string
	XLabel   string
	YLabel   string
	Edges    []float64
	Counts   []int
	DensityX []float64
	DensityY []float64
}

// ScatterSpec describes a point cloud with an optional fitted curve.
type ScatterSpec struct {
	ID        string
	Title     string
	XLabel    string
	YLabel    string
	X         []float64
	Y         []float64
	CurveName string
	CurveX    []float64
	CurveY    []float64
}

// DualAxisSpec describes bars on the left axis and a line on the right axis
// over shared categorical labels.
type DualAxisSpec struct {
	ID            string
	Title         string
	XLabel        string
	Labels        []string
	PrimaryName   string
	Primary       []float64
	SecondaryName string
	Secondary     []float64
}

// PieSpec describes a pie chart; slice labels get their percentage appended.
type PieSpec struct {
	ID     string
	Title  string
	Slices []Bar
}

// Cell is one heatmap value; undefined cells are drawn as "n/a".
type Cell struct {
	Value   float64
	Defined bool
}

// HeatmapSpec describes a square annotated matrix over [-1, 1].
type HeatmapSpec struct {
	ID     string
	Title  string
	Labels []string
	Cells  [][]Cell
}

// Renderer produces chart artifacts.
type Renderer interface {
	HorizontalBar(spec BarSpec) (Artifact, error)
	VerticalBar(spec BarSpec) (Artifact, error)
	Histogram(spec HistogramSpec) (Artifact, error)
	Scatter(spec ScatterSpec) (Artifact, error)
	DualAxis(spec DualAxisSpec) (Artifact, error)
	Pie(spec PieSpec) (Artifact, error)
	Heatmap(spec HeatmapSpec) (Artifact, error)
}

// PNGRenderer draws charts of a fixed size.
type PNGRenderer struct {
	width  int
	height int
}

// NewPNGRenderer creates a Renderer drawing width x height PNG images.
func NewPNGRenderer(width, height int) Renderer {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 600
	}
	return &PNGRenderer{width: width, height: height}
}
