// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latchart

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Bars is the data of one histogram group.
type Bars struct {
	Label  string
	Color  color.Color
	Values plotter.Values
	Errors []float64
}

// A Histogram is the data of a grouped bar chart: one bar per group
// for every label.
type Histogram struct {
	Labels []string
	Bars   []Bars
}

// HistogramData selects the bars of every group from the per-(test
// case, job) mean and std tables. Jobs named in exclude are left out.
func HistogramData(jobs, exclude []string, mean, std [][]float64, groups []Group) (*Histogram, error) {
	if err := checkGroups(groups, len(mean)); err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(exclude))
	for _, j := range exclude {
		skip[j] = true
	}

	h := &Histogram{Bars: make([]Bars, len(groups))}
	for i, g := range groups {
		h.Bars[i] = Bars{Label: g.Label, Color: g.Color}
	}
	for j, job := range jobs {
		if skip[job] {
			continue
		}
		h.Labels = append(h.Labels, job)
		for i, g := range groups {
			if j >= len(mean[g.Case]) || j >= len(std[g.Case]) {
				return nil, errors.Errorf("group %q has no value for job %s", g.Label, job)
			}
			b := &h.Bars[i]
			b.Values = append(b.Values, mean[g.Case][j])
			b.Errors = append(b.Errors, std[g.Case][j])
		}
	}
	return h, nil
}

// HistogramChart draws h as grouped bars with error bars.
func HistogramChart(h *Histogram, st Style) (*plot.Plot, error) {
	if len(h.Labels) == 0 {
		return nil, errors.Errorf("histogram has no jobs")
	}
	p := newPlot(st.AverageLabel, st)

	n := len(h.Bars)
	for i, bars := range h.Bars {
		bc, err := newErrorBarChart(bars.Values, bars.Errors, st.BarWidth)
		if err != nil {
			return nil, err
		}
		bc.Color = bars.Color
		bc.LineStyle.Width = 0
		bc.Offset = (vg.Length(i) - vg.Length(n-1)/2) * st.BarWidth
		bc.ErrorStyle.Color = st.BarErrorColor

		p.Add(bc)
		p.Legend.Add(bars.Label, bc)
	}
	p.NominalX(h.Labels...)
	// Bars start at zero; error bars may still reach below it.
	p.Y.Min = math.Min(0, p.Y.Min)
	return p, nil
}

// errorBarChart is a plotter.BarChart that also draws a symmetric
// error bar on top of every bar, honouring the bar's offset.
type errorBarChart struct {
	*plotter.BarChart

	Errors     []float64
	ErrorStyle draw.LineStyle
	CapWidth   vg.Length
}

func newErrorBarChart(vs plotter.Valuer, errs []float64, width vg.Length) (*errorBarChart, error) {
	if len(errs) != vs.Len() {
		return nil, errors.Errorf("%d values but %d errors", vs.Len(), len(errs))
	}
	bc, err := plotter.NewBarChart(vs, width)
	if err != nil {
		return nil, err
	}
	return &errorBarChart{
		BarChart:   bc,
		Errors:     errs,
		ErrorStyle: plotter.DefaultLineStyle,
		CapWidth:   width / 2,
	}, nil
}

// Plot draws the bars, then the error bars.
func (b *errorBarChart) Plot(c draw.Canvas, plt *plot.Plot) {
	b.BarChart.Plot(c, plt)

	trX, trY := plt.Transforms(&c)
	hw := b.CapWidth / 2
	for i, v := range b.Values {
		x := trX(b.XMin+float64(i)) + b.Offset
		if !c.ContainsX(x) {
			continue
		}
		e := b.Errors[i]
		lo, hi := trY(v-e), trY(v+e)
		lines := c.ClipLinesY(
			[]vg.Point{{X: x, Y: lo}, {X: x, Y: hi}},
			[]vg.Point{{X: x - hw, Y: hi}, {X: x + hw, Y: hi}},
			[]vg.Point{{X: x - hw, Y: lo}, {X: x + hw, Y: lo}},
		)
		c.StrokeLines(b.ErrorStyle, lines...)
	}
}

// DataRange extends the bar range to cover the error bars.
func (b *errorBarChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, ymin, ymax = b.BarChart.DataRange()
	for i, v := range b.Values {
		ymin = math.Min(ymin, v-b.Errors[i])
		ymax = math.Max(ymax, v+b.Errors[i])
	}
	return xmin, xmax, ymin, ymax
}
