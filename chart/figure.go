package chart

import (
	"errors"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Canvas size of every figure.
const (
	Width  = 7 * vg.Inch
	Height = 5 * vg.Inch
)

var errReleased = errors.New("figure already released")

// Series describes one group drawn on a figure.
type Series struct {
	Label  string
	Points int
}

// Figure is a rendered chart waiting to be exported. It must be released
// with Close once exported; Export does that itself.
type Figure struct {
	plot     *plot.Plot
	series   []Series
	skipped  int
	releases int
}

// Series returns the drawn series in drawing order.
func (f *Figure) Series() []Series {
	return append([]Series(nil), f.series...)
}

// Skipped returns the number of rows left out because they cannot be placed
// on the axes (non-finite, or not positive on a logarithmic axis).
func (f *Figure) Skipped() int {
	return f.skipped
}

// Render writes the figure in the given format ("svg", "eps", "pdf", ...).
func (f *Figure) Render(w io.Writer, format string) (int64, error) {
	if f.plot == nil {
		return 0, errReleased
	}
	wt, err := f.plot.WriterTo(Width, Height, format)
	if err != nil {
		return 0, err
	}
	return wt.WriteTo(w)
}

// Close releases the figure. Further calls are no-ops.
func (f *Figure) Close() error {
	if f.plot == nil {
		return nil
	}
	f.plot = nil
	f.releases++
	return nil
}
