// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latchart renders aggregated pipeline latencies as charts.
package latchart

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// A Group is one legend entry: a test case drawn in a fixed colour.
type Group struct {
	Label string
	Color color.Color

	// Case is the index of the test case in the aggregated tables.
	Case int
}

// Style holds the presentation settings shared by all charts.
type Style struct {
	Width, Height vg.Length

	// BarWidth is the width of a single bar in a histogram.
	BarWidth vg.Length

	LineErrorColor color.Color // error bars on cumulative lines
	BarErrorColor  color.Color // error bars on histogram bars
	GridColor      color.Color

	CumulativeLabel string
	AverageLabel    string
}

// DefaultStyle matches the figures in the experiment write-up.
func DefaultStyle() Style {
	return Style{
		Width:           6.4 * vg.Inch,
		Height:          4.8 * vg.Inch,
		BarWidth:        vg.Points(7),
		LineErrorColor:  color.NRGBA{0xff, 0x00, 0x00, 0xff},
		BarErrorColor:   color.NRGBA{0xdc, 0x14, 0x3c, 0xff},
		GridColor:       color.NRGBA{0xc6, 0xc6, 0xc6, 0xff},
		CumulativeLabel: "cumulative average latency (s)",
		AverageLabel:    "average latency (s)",
	}
}

// Formats lists the image formats Save accepts.
var Formats = []string{"pdf", "png", "svg", "eps"}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Save renders p in the given format and writes it to w.
func Save(p *plot.Plot, w io.Writer, format string, st Style) error {
	if !ValidFormat(format) {
		return errors.Errorf("unsupported chart format %q", format)
	}
	wt, err := p.WriterTo(st.Width, st.Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// newPlot returns a plot with a dashed horizontal and vertical grid.
func newPlot(ylabel string, st Style) *plot.Plot {
	p := plot.New()
	p.Y.Label.Text = ylabel

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(3), vg.Points(2)}
	grid.Vertical.Color = st.GridColor
	grid.Vertical.Dashes = dashes
	grid.Horizontal.Color = st.GridColor
	grid.Horizontal.Dashes = dashes
	p.Add(grid)

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = vg.Millimeter
	return p
}

func checkGroups(groups []Group, cases int) error {
	if len(groups) == 0 {
		return errors.Errorf("no groups to plot")
	}
	for _, g := range groups {
		if g.Case < 0 || g.Case >= cases {
			return errors.Errorf("group %q refers to test case %d, but there are %d", g.Label, g.Case, cases)
		}
	}
	return nil
}
