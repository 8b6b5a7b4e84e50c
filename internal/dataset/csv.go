// Package dataset reads and writes the repository metrics CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/naka-gawa/github-report/internal/domain"
)

// countSuffix is stripped from header names on load and added back on write.
const countSuffix = "_count"

// nameColumn holds the repository name.
const nameColumn = "repositories"

// Load reads the CSV at path, normalises its header and removes duplicate rows.
func Load(path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		var le *domain.LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return ds, nil
}

// Read parses a dataset from r. Errors are always *domain.LoadError.
func Read(r io.Reader) (domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.LoadError{Line: 1, Err: errors.New("empty file, header row expected")}
		}
		return nil, &domain.LoadError{Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, &domain.LoadError{Line: 1, Err: err}
	}

	var records []domain.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.LoadError{Line: line, Err: err}
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, &domain.LoadError{Line: line, Err: err}
		}
		records = append(records, rec)
	}
	return Dedup(records), nil
}

// NormalizeColumn strips the count suffix from a header name.
func NormalizeColumn(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	return strings.ReplaceAll(name, countSuffix, "")
}

// columns maps a normalised column name to its index in the row.
type columns map[string]int

func indexHeader(header []string) (columns, error) {
	idx := make(columns, len(header))
	for i, h := range header {
		idx[NormalizeColumn(h)] = i
	}
	required := []string{nameColumn, string(domain.FieldLanguage)}
	for _, f := range domain.NumericFields {
		required = append(required, string(f))
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("malformed header: missing columns %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx columns) (domain.Record, error) {
	cell := func(col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.Record{
		Name:     cell(nameColumn),
		Language: cell(string(domain.FieldLanguage)),
	}
	targets := map[domain.Field]*int{
		domain.FieldStars:        &rec.Stars,
		domain.FieldForks:        &rec.Forks,
		domain.FieldIssues:       &rec.Issues,
		domain.FieldPullRequests: &rec.PullRequests,
		domain.FieldContributors: &rec.Contributors,
	}
	for _, f := range domain.NumericFields {
		n, err := parseCount(cell(string(f)))
		if err != nil {
			return domain.Record{}, fmt.Errorf("column %s: %w", f, err)
		}
		*targets[f] = n
	}
	return rec, nil
}

// parseCount accepts non-negative integers, also when exported as "12.0".
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || fv != float64(int(fv)) {
			return 0, fmt.Errorf("invalid count %q", s)
		}
		n = int(fv)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

// Dedup removes exact duplicate records, keeping the first occurrence.
func Dedup(records []domain.Record) domain.Dataset {
	seen := make(map[domain.Record]struct{}, len(records))
	out := make(domain.Dataset, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Write emits records in the loader's input format.
func Write(w io.Writer, records []domain.Record) error {
	cw := csv.NewWriter(w)
	header := []string{nameColumn}
	for _, f := range domain.NumericFields {
		header = append(header, string(f)+countSuffix)
	}
	header = append(header, string(domain.FieldLanguage))
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Name}
		for _, f := range domain.NumericFields {
			row = append(row, strconv.Itoa(int(r.Value(f))))
		}
		row = append(row, r.Language)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
