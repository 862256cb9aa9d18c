package runlog

import (
	"fmt"
)

// ConfigurationError reports an input path that is unset or cannot be read.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "logfile not set: " + e.Reason
	}
	return fmt.Sprintf("logfile %q: %s", e.Path, e.Reason)
}

// DataShapeError reports a table that does not have the expected layout.
// Row is the 1-based index of the data row (the header is not counted); it
// is 0 when the problem is not tied to a single row.
type DataShapeError struct {
	Column string
	Row    int
	Reason string
}

func (e *DataShapeError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	default:
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	}
}

// NormalizationError reports a run whose node count does not match the one the
// growth-rate normalization was configured for.
type NormalizationError struct {
	Row  int
	N    float64
	Want int
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("row %d: n=%v but growth rate is normalized for n=%d (m/%d)", e.Row, e.N, e.Want, e.Want-1)
}
