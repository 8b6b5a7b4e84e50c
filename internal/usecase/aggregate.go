// Package usecase contains the business logic of the application.
package usecase

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-report/internal/domain"
)

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 30

// TopNBy returns the n records with the largest value of field, in ascending
// display order. Ties are broken by the tiebreak fields, then by input order.
func TopNBy(ds domain.Dataset, n int, field domain.Field, tiebreak ...domain.Field) []domain.Record {
	if n <= 0 || len(ds) == 0 {
		return []domain.Record{}
	}
	keys := append([]domain.Field{field}, tiebreak...)
	greater := func(a, b domain.Record) bool {
		for _, k := range keys {
			av, bv := a.Value(k), b.Value(k)
			if av != bv {
				return av > bv
			}
		}
		return false
	}

	ranked := make([]domain.Record, len(ds))
	copy(ranked, ds)
	sort.SliceStable(ranked, func(i, j int) bool { return greater(ranked[i], ranked[j]) })
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return greater(ranked[j], ranked[i]) })
	return ranked
}

// Count is one entry of a value count.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Counts is ordered by count descending unless stated otherwise.
type Counts []Count

// ValueCounts counts the occurrences of each distinct value of field. Every
// record is counted, so the counts sum to len(ds); a missing language is the
// empty key. Ties keep the order of first appearance.
func ValueCounts(ds domain.Dataset, field domain.Field) Counts {
	pos := make(map[string]int)
	var out Counts
	for _, r := range ds {
		key := r.Language
		if field.IsNumeric() {
			key = strconv.Itoa(int(r.Value(field)))
		}
		if i, ok := pos[key]; ok {
			out[i].Count++
			continue
		}
		pos[key] = len(out)
		out = append(out, Count{Value: key, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if out == nil {
		return Counts{}
	}
	return out
}

// Known drops the entry for missing values.
func (c Counts) Known() Counts {
	out := make(Counts, 0, len(c))
	for _, e := range c {
		if e.Value != "" {
			out = append(out, e)
		}
	}
	return out
}

// Top returns the first k entries.
func (c Counts) Top(k int) Counts {
	if k < 0 {
		k = 0
	}
	if k > len(c) {
		k = len(c)
	}
	out := make(Counts, k)
	copy(out, c[:k])
	return out
}

// Ascending returns the entries in reverse order, smallest first.
func (c Counts) Ascending() Counts {
	out := make(Counts, len(c))
	for i, e := range c {
		out[len(c)-1-i] = e
	}
	return out
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, e := range c {
		total += e.Count
	}
	return total
}

// FieldTotal is the sum of one field across the dataset.
type FieldTotal struct {
	Field domain.Field `json:"field"`
	Sum   float64      `json:"sum"`
}

// SumFields returns the per-field totals in argument order.
func SumFields(ds domain.Dataset, fields ...domain.Field) []FieldTotal {
	out := make([]FieldTotal, 0, len(fields))
	for _, f := range fields {
		// stats.Sum only fails on empty input.
		sum, err := stats.Sum(stats.Float64Data(ds.Values(f)))
		if err != nil {
			sum = 0
		}
		out = append(out, FieldTotal{Field: f, Sum: sum})
	}
	return out
}

// Coefficient is a correlation value that may be undefined.
type Coefficient struct {
	Value   float64
	Defined bool
}

// MarshalJSON encodes undefined coefficients as null.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Fields []domain.Field   `json:"fields"`
	Cells  [][]Coefficient `json:"cells"`
}

// At returns the coefficient between fields i and j.
func (m CorrMatrix) At(i, j int) Coefficient {
	return m.Cells[i][j]
}

// CorrelationMatrix computes pairwise Pearson coefficients. The diagonal is
// 1 by definition. Pairs involving a zero-variance field are undefined; they
// are never reported as 0.
func CorrelationMatrix(ds domain.Dataset, fields ...domain.Field) CorrMatrix {
	if len(fields) == 0 {
		fields = domain.NumericFields
	}
	cols := make([]stats.Float64Data, len(fields))
	varies := make([]bool, len(fields))
	for i, f := range fields {
		cols[i] = ds.Values(f)
		v, err := stats.PopulationVariance(cols[i])
		varies[i] = err == nil && v > 0
	}

	m := CorrMatrix{Fields: fields, Cells: make([][]Coefficient, len(fields))}
	for i := range fields {
		m.Cells[i] = make([]Coefficient, len(fields))
		m.Cells[i][i] = Coefficient{Value: 1, Defined: true}
	}
	for i := range fields {
		for j := i + 1; j < len(fields); j++ {
			c := Coefficient{Value: math.NaN()}
			if varies[i] && varies[j] {
				// stats.Correlation returns 0 for constant input, which the
				// variance check above has already excluded.
				if r, err := stats.Correlation(cols[i], cols[j]); err == nil && !math.IsNaN(r) {
					c = Coefficient{Value: math.Max(-1, math.Min(1, r)), Defined: true}
				}
			}
			m.Cells[i][j] = c
			m.Cells[j][i] = c
		}
	}
	return m
}

// Histogram holds equal-width bins over the observed range of a field.
type Histogram struct {
	Field  domain.Field `json:"field"`
	Edges  []float64    `json:"edges"`
	Counts []int        `json:"counts"`
}

// BinWidth is the width shared by all bins.
func (h Histogram) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// Total returns the number of binned values.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// HistogramOf bins field into bins equal-width bins spanning [min, max]. The
// last bin is closed on the right. A constant column is binned over
// [v-0.5, v+0.5].
func HistogramOf(ds domain.Dataset, field domain.Field, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	values := stats.Float64Data(ds.Values(field))
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, _ = stats.Min(values)
		hi, _ = stats.Max(values)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	h := Histogram{Field: field, Edges: make([]float64, bins+1), Counts: make([]int, bins)}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi
	for _, v := range values {
		i := int((v - lo) / (hi - lo) * float64(bins))
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		h.Counts[i]++
	}
	return h
}

// Density evaluates a Gaussian kernel density estimate of values at points
// evenly spaced over the histogram range. The bandwidth follows Scott's rule
// and the curve is scaled to histogram counts so both share one axis. It
// returns nil slices when fewer than two distinct values are present.
func (h Histogram) Density(values []float64, points int) (xs, ys []float64) {
	n := float64(len(values))
	if len(values) < 2 || points < 2 || len(h.Edges) < 2 {
		return nil, nil
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || sd == 0 {
		return nil, nil
	}
	bw := sd * math.Pow(n, -0.2)
	scale := n * h.BinWidth()

	lo, hi := h.Edges[0], h.Edges[len(h.Edges)-1]
	xs = make([]float64, points)
	ys = make([]float64, points)
	norm := 1 / (n * bw * math.Sqrt(2*math.Pi))
	for p := range xs {
		x := lo + (hi-lo)*float64(p)/float64(points-1)
		var sum float64
		for _, v := range values {
			u := (x - v) / bw
			sum += math.Exp(-0.5 * u * u)
		}
		xs[p] = x
		ys[p] = sum * norm * scale
	}
	return xs, ys
}
