// Package chart draws grouped scatter plots of run-log columns and exports
// them as vector images.
package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/dispersed-ledger/cycletrace/runlog"
)

// Font sizes, in points.
const (
	LabelSize  = 14
	LegendSize = 12
)

// opacity of the scatter markers, out of 255 (0.7)
const markerAlpha = 178

// Spec describes one chart: which columns go on the axes, how rows are
// grouped into series, and where the chart is exported.
type Spec struct {
	Prefix string

	XColumn string
	XLabel  string
	YColumn string
	YLabel  string

	// GroupColumn splits the rows into one series per value in Groups,
	// drawn in that order with the matching Palette colour.
	GroupColumn string
	Groups      []float64
	Palette     []color.Color

	LogY bool
}

// Build draws one scatter series per group of s. A group without rows still
// gets a legend entry.
func Build(t *runlog.Table, s Spec) (*Figure, error) {
	if len(s.Palette) < len(s.Groups) {
		return nil, fmt.Errorf("chart %s: %d groups but only %d colours", s.Prefix, len(s.Groups), len(s.Palette))
	}
	if err := t.Require(s.XColumn, s.YColumn, s.GroupColumn); err != nil {
		return nil, fmt.Errorf("chart %s: %w", s.Prefix, err)
	}

	p := plot.New()
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(LabelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(LabelSize)
	p.X.Tick.Label.Font.Size = vg.Points(LabelSize)
	p.Y.Tick.Label.Font.Size = vg.Points(LabelSize)
	p.Legend.TextStyle.Font.Size = vg.Points(LegendSize)
	p.Legend.Top = true
	p.Legend.Left = true

	// the grid goes in first so the points are drawn over it
	p.Add(plotter.NewGrid())

	fig := &Figure{plot: p}
	for i, g := range s.Groups {
		rows, err := t.Filter(s.GroupColumn, g)
		if err != nil {
			return nil, err
		}
		xs, _ := rows.Column(s.XColumn)
		ys, _ := rows.Column(s.YColumn)

		pts := make(plotter.XYs, 0, len(xs))
		for j := range xs {
			if !placeable(xs[j], ys[j], s.LogY) {
				fig.skipped++
				continue
			}
			pts = append(pts, plotter.XY{X: xs[j], Y: ys[j]})
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", s.Prefix, err)
		}
		c := color.NRGBAModel.Convert(s.Palette[i]).(color.NRGBA)
		c.A = markerAlpha
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)

		label := fmt.Sprintf("%s=%v", s.GroupColumn, g)
		p.Add(sc)
		p.Legend.Add(label, sc)
		fig.series = append(fig.series, Series{Label: label, Points: len(pts)})
	}

	if s.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		fitLogRange(&p.Y)
	}
	return fig, nil
}

func placeable(x, y float64, logY bool) bool {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	return !logY || y > 0
}

// fitLogRange keeps a logarithmic axis strictly positive. Without data the
// axis would otherwise default to [-1, 1], and a single value v to [v-1, v+1].
func fitLogRange(a *plot.Axis) {
	if math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) || a.Min <= 0 {
		a.Min, a.Max = 1, 10
		return
	}
	if a.Min == a.Max {
		a.Min /= 2
		a.Max *= 2
	}
}
