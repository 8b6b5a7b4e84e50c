package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas is a raster surface for charts go-chart does not draw: horizontal
// bars and annotated heatmaps.
type canvas struct {
	img  *image.RGBA
	face font.Face
}

var (
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black     = color.RGBA{A: 255}
	gridGray  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	undefGray = color.RGBA{R: 160, G: 160, B: 160, A: 255}
)

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &canvas{img: img, face: basicfont.Face7x13}
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) textWidth(s string) int {
	return (&font.Drawer{Face: c.face}).MeasureString(s).Ceil()
}

// text draws s with its baseline at y, starting at x.
func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func (c *canvas) centered(cx, y int, s string, col color.Color) {
	c.text(cx-c.textWidth(s)/2, y, s, col)
}

// fit shortens s so it is at most maxWidth pixels wide.
func (c *canvas) fit(s string, maxWidth int) string {
	if c.textWidth(s) <= maxWidth {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && c.textWidth(string(r)+"...") > maxWidth {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tab20c is matplotlib's tab20c colormap.
var tab20c = []color.RGBA{
	{49, 130, 189, 255}, {107, 174, 214, 255}, {158, 202, 225, 255}, {198, 219, 239, 255},
	{230, 85, 13, 255}, {253, 141, 60, 255}, {253, 174, 107, 255}, {253, 208, 162, 255},
	{49, 163, 84, 255}, {116, 196, 118, 255}, {161, 217, 155, 255}, {199, 233, 192, 255},
	{117, 107, 177, 255}, {158, 154, 200, 255}, {188, 189, 220, 255}, {218, 218, 235, 255},
	{99, 99, 99, 255}, {150, 150, 150, 255}, {189, 189, 189, 255}, {217, 217, 217, 255},
}

// paletteAt samples tab20c at evenly spaced positions, one per bar.
func paletteAt(i, n int) color.RGBA {
	if n <= 1 {
		return tab20c[0]
	}
	pos := float64(i) / float64(n-1) * float64(len(tab20c)-1)
	return tab20c[int(math.Round(pos))]
}

// HorizontalBar draws bars bottom to top, so ascending input puts the largest
// value on top.
func (p *PNGRenderer) HorizontalBar(spec BarSpec) (Artifact, error) {
	if len(spec.Bars) == 0 {
		return Artifact{}, fmt.Errorf("render %s: no bars", spec.ID)
	}
	c := newCanvas(p.width, p.height)
	c.centered(p.width/2, 24, spec.Title, black)

	labelWidth := 0
	for _, b := range spec.Bars {
		labelWidth = max(labelWidth, c.textWidth(b.Label))
	}
	labelWidth = min(labelWidth, p.width*2/5)

	left := labelWidth + 20
	right := p.width - 60
	top := 50
	bottom := p.height - 50
	if spec.YLabel != "" {
		c.text(8, top-8, spec.YLabel, black)
	}

	maxV := 0.0
	for _, b := range spec.Bars {
		maxV = math.Max(maxV, b.Value)
	}
	if maxV == 0 {
		maxV = 1
	}

	// Vertical grid with five ticks.
	for t := 0; t <= 4; t++ {
		v := maxV * float64(t) / 4
		x := left + int(float64(right-left)*float64(t)/4)
		c.fill(image.Rect(x, top, x+1, bottom), gridGray)
		c.centered(x, bottom+16, formatTick(v), black)
	}
	if spec.XLabel != "" {
		c.centered((left+right)/2, bottom+36, spec.XLabel, black)
	}

	n := len(spec.Bars)
	slot := float64(bottom-top) / float64(n)
	for i, b := range spec.Bars {
		// i == 0 sits at the bottom.
		y0 := bottom - int(slot*float64(i+1)) + int(slot*0.1)
		y1 := bottom - int(slot*float64(i)) - int(slot*0.1)
		x1 := left + int(float64(right-left)*b.Value/maxV)
		c.fill(image.Rect(left, y0, x1, y1), paletteAt(i, n))

		mid := (y0+y1)/2 + 4
		label := c.fit(b.Label, labelWidth)
		c.text(left-8-c.textWidth(label), mid, label, black)
		c.text(x1+4, mid, formatTick(b.Value), black)
	}
	c.fill(image.Rect(left, top, left+1, bottom), black)
	c.fill(image.Rect(left, bottom, right, bottom+1), black)

	data, err := c.encode()
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindHorizontalBar, Title: spec.Title, PNG: data}, nil
}

// coolwarm maps v in [-1, 1] onto a diverging blue-white-red scale.
func coolwarm(v float64) color.RGBA {
	v = math.Max(-1, math.Min(1, v))
	blue := [3]float64{59, 76, 192}
	mid := [3]float64{221, 221, 221}
	red := [3]float64{180, 4, 38}
	from, to, t := mid, red, v
	if v < 0 {
		from, to, t = mid, blue, -v
	}
	mix := func(k int) uint8 { return uint8(math.Round(from[k] + (to[k]-from[k])*t)) }
	return color.RGBA{R: mix(0), G: mix(1), B: mix(2), A: 255}
}

// Heatmap draws an annotated square matrix with a colour bar. Undefined
// cells are grey and labelled "n/a".
func (p *PNGRenderer) Heatmap(spec HeatmapSpec) (Artifact, error) {
	n := len(spec.Labels)
	if n == 0 || len(spec.Cells) != n {
		return Artifact{}, fmt.Errorf("render %s: %d labels for %d rows", spec.ID, n, len(spec.Cells))
	}
	for i, row := range spec.Cells {
		if len(row) != n {
			return Artifact{}, fmt.Errorf("render %s: row %d has %d cells, want %d", spec.ID, i, len(row), n)
		}
	}
	c := newCanvas(p.width, p.height)
	c.centered(p.width/2, 24, spec.Title, black)

	labelWidth := 0
	for _, l := range spec.Labels {
		labelWidth = max(labelWidth, c.textWidth(l))
	}
	left := labelWidth + 16
	top := 44
	size := min(p.width-left-90, p.height-top-40)
	cell := size / n
	if cell < 2 {
		return Artifact{}, fmt.Errorf("render %s: canvas too small for %d rows", spec.ID, n)
	}
	size = cell * n

	for i := range spec.Cells {
		for j, v := range spec.Cells[i] {
			r := image.Rect(left+j*cell, top+i*cell, left+(j+1)*cell, top+(i+1)*cell)
			label := "n/a"
			fg := color.Color(black)
			if v.Defined {
				c.fill(r, coolwarm(v.Value))
				label = fmt.Sprintf("%.2f", v.Value)
				if math.Abs(v.Value) > 0.6 {
					fg = white
				}
			} else {
				c.fill(r, undefGray)
			}
			c.centered((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2+4, label, fg)
		}
	}
	for i, l := range spec.Labels {
		c.text(left-8-c.textWidth(l), top+i*cell+cell/2+4, l, black)
		c.centered(left+i*cell+cell/2, top+size+16, c.fit(l, cell-4), black)
	}

	// Colour bar from +1 (top) to -1 (bottom).
	barX := left + size + 24
	for y := 0; y < size; y++ {
		v := 1 - 2*float64(y)/float64(size-1)
		c.fill(image.Rect(barX, top+y, barX+16, top+y+1), coolwarm(v))
	}
	for _, t := range []float64{1, 0.5, 0, -0.5, -1} {
		y := top + int((1-t)/2*float64(size-1))
		c.text(barX+20, y+4, strings.TrimSuffix(fmt.Sprintf("%.1f", t), ".0"), black)
	}

	data, err := c.encode()
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", spec.ID, err)
	}
	return Artifact{ID: spec.ID, Kind: KindHeatmap, Title: spec.Title, PNG: data}, nil
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
