// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latchart

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// errorPoints pairs points with symmetric y errors so they can be
// drawn by plotter.YErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Len disambiguates between the embedded Len methods.
func (p errorPoints) Len() int { return len(p.XYs) }

var _ interface {
	plotter.XYer
	plotter.YErrorer
} = errorPoints{}

// CumulativeChart draws one line per group through cum[g.Case],
// with error bars taken from errs[g.Case]. The x axis is nominal
// with one tick per job.
func CumulativeChart(jobs []string, groups []Group, cum, errs [][]float64, st Style) (*plot.Plot, error) {
	if err := checkGroups(groups, len(cum)); err != nil {
		return nil, err
	}
	p := newPlot(st.CumulativeLabel, st)

	for _, g := range groups {
		ys, es := cum[g.Case], errs[g.Case]
		if len(ys) != len(jobs) || len(es) != len(jobs) {
			return nil, errors.Errorf("group %q: %d values and %d errors for %d jobs", g.Label, len(ys), len(es), len(jobs))
		}
		pts := errorPoints{
			XYs:     make(plotter.XYs, len(jobs)),
			YErrors: make(plotter.YErrors, len(jobs)),
		}
		for j := range jobs {
			pts.XYs[j].X = float64(j)
			pts.XYs[j].Y = ys[j]
			pts.YErrors[j].Low = es[j]
			pts.YErrors[j].High = es[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = g.Color

		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Color = st.LineErrorColor

		p.Add(line, bars)
		p.Legend.Add(g.Label, line)
	}
	p.NominalX(jobs...)
	return p, nil
}
