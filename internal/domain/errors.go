package domain

import "fmt"

// LoadError reports a dataset that could not be read. It is fatal at startup.
type LoadError struct {
	Path string
	// Line is the 1-based CSV line, 0 when the error is not tied to a row.
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FitError reports a curve fit that could not produce parameters.
// Callers degrade the affected chart instead of aborting the report.
type FitError struct {
	Reason string
}

func (e *FitError) Error() string {
	return "curve fit failed: " + e.Reason
}
