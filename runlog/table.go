// Package runlog loads the per-run log written by the cycle census simulator
// and derives the normalized metrics that the report plots.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table is a column-oriented numeric table. Columns keep the order in which
// they were read or added.
type Table struct {
	names []string
	cols  [][]float64
	index map[string]int
}

// New returns an empty table with the given columns.
func New(names ...string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(names))}
	for _, n := range names {
		if err := t.AddColumn(n, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Load opens the log at path and reads it. Problems with the path itself are
// reported as *ConfigurationError, problems with its content as *DataShapeError.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &ConfigurationError{Reason: "no input path configured"}
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{Path: path, Reason: "does not exist"}
		}
		return nil, &ConfigurationError{Path: path, Reason: err.Error()}
	}
	if st.IsDir() {
		return nil, &ConfigurationError{Path: path, Reason: "is a directory"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "not readable: " + err.Error()}
	}
	defer f.Close()
	return Read(f)
}

// Read parses a comma-separated table with a header row. Every required
// column must be present and every cell must be numeric.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataShapeError{Reason: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t, err := New(header...)
	if err != nil {
		return nil, err
	}

	row := 0
	vals := make([]float64, len(header))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		var pe *csv.ParseError
		if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
			return nil, &DataShapeError{Row: row, Reason: fmt.Sprintf("has %d fields, header has %d", len(rec), len(header))}
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, &DataShapeError{Column: header[i], Row: row, Reason: fmt.Sprintf("%q is not a number", cell)}
			}
			vals[i] = v
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, err
		}
	}

	if err := t.Require(RequiredColumns...); err != nil {
		return nil, err
	}
	return t, nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the table
// and must not be modified.
func (t *Table) Column(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &DataShapeError{Column: name, Reason: "required column missing"}
	}
	return t.cols[i], nil
}

// Require checks that every named column is present.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if !t.Has(n) {
			return &DataShapeError{Column: n, Reason: "required column missing"}
		}
	}
	return nil
}

// AppendRow adds one row; vals follow the column order.
func (t *Table) AppendRow(vals ...float64) error {
	if len(vals) != len(t.names) {
		return &DataShapeError{Row: t.Len() + 1, Reason: fmt.Sprintf("has %d fields, table has %d columns", len(vals), len(t.names))}
	}
	for i, v := range vals {
		t.cols[i] = append(t.cols[i], v)
	}
	return nil
}

// AddColumn appends a column after the existing ones. vals must hold one
// value per row; a nil slice is accepted on an empty table.
func (t *Table) AddColumn(name string, vals []float64) error {
	if name == "" {
		return &DataShapeError{Column: name, Reason: "empty column name"}
	}
	if t.Has(name) {
		return &DataShapeError{Column: name, Reason: "column already present"}
	}
	if len(t.names) > 0 && len(vals) != t.Len() {
		return &DataShapeError{Column: name, Reason: fmt.Sprintf("has %d values, table has %d rows", len(vals), t.Len())}
	}
	t.index[name] = len(t.names)
	t.names = append(t.names, name)
	t.cols = append(t.cols, vals)
	return nil
}

// Filter returns a new table holding the rows whose value in col is one of
// allow, in their original order. Other rows are dropped.
func (t *Table) Filter(col string, allow ...float64) (*Table, error) {
	key, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	keep := make(map[float64]struct{}, len(allow))
	for _, v := range allow {
		keep[v] = struct{}{}
	}

	out := &Table{
		names: t.Columns(),
		cols:  make([][]float64, len(t.cols)),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for c := range out.cols {
		out.cols[c] = []float64{}
	}
	for r, v := range key {
		if _, ok := keep[v]; !ok {
			continue
		}
		for c := range t.cols {
			out.cols[c] = append(out.cols[c], t.cols[c][r])
		}
	}
	return out, nil
}
