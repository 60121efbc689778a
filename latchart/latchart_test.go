// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latchart

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

var jobs = []string{"lint", "test", "sonar", "build", "cont", "depend", "pre", "bench", "verify", "deploy"}

func grid(cases int, f func(i, j int) float64) [][]float64 {
	g := make([][]float64, cases)
	for i := range g {
		g[i] = make([]float64, len(jobs))
		for j := range g[i] {
			g[i][j] = f(i, j)
		}
	}
	return g
}

var groups = []Group{
	{Label: "high", Color: color.NRGBA{0xda, 0xa5, 0x20, 0xff}, Case: 2},
	{Label: "mid", Color: color.NRGBA{0x64, 0x95, 0xed, 0xff}, Case: 1},
	{Label: "low", Color: color.NRGBA{0x00, 0x80, 0x00, 0xff}, Case: 0},
}

func TestHistogramDataExcludesBench(t *testing.T) {
	mean := grid(3, func(i, j int) float64 { return float64(10*i + j) })
	std := grid(3, func(i, j int) float64 { return float64(j) / 10 })

	exec, err := HistogramData(jobs, []string{"bench"}, mean, std, groups)
	require.NoError(t, err)
	queued, err := HistogramData(jobs, nil, mean, std, groups)
	require.NoError(t, err)

	assert.NotContains(t, exec.Labels, "bench")
	assert.Contains(t, queued.Labels, "bench")
	assert.Len(t, queued.Labels, len(exec.Labels)+1)
	for _, l := range exec.Labels {
		assert.Contains(t, queued.Labels, l)
	}

	require.Len(t, exec.Bars, 3)
	high := exec.Bars[0]
	assert.Equal(t, "high", high.Label)
	// Jobs after bench shift down by one.
	assert.Equal(t, 28.0, high.Values[7])
	assert.Equal(t, 0.8, high.Errors[7])
	assert.Equal(t, 27.0, queued.Bars[0].Values[7])
	assert.Equal(t, 0.0, exec.Bars[2].Values[0])
}

func TestHistogramDataBadGroup(t *testing.T) {
	mean := grid(2, func(i, j int) float64 { return 1 })
	_, err := HistogramData(jobs, nil, mean, mean, groups)
	assert.Error(t, err)

	_, err = HistogramData(jobs, nil, mean, mean, nil)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	st := DefaultStyle()
	mean := grid(3, func(i, j int) float64 { return float64(i+1) * 2 })
	std := grid(3, func(i, j int) float64 { return 0.25 })

	line, err := CumulativeChart(jobs, groups, mean, std, st)
	require.NoError(t, err)
	h, err := HistogramData(jobs, []string{"bench"}, mean, std, groups)
	require.NoError(t, err)
	hist, err := HistogramChart(h, st)
	require.NoError(t, err)

	for _, format := range []string{"svg", "pdf", "png"} {
		var buf bytes.Buffer
		require.NoError(t, Save(line, &buf, format, st), format)
		assert.NotZero(t, buf.Len(), format)

		buf.Reset()
		require.NoError(t, Save(hist, &buf, format, st), format)
		assert.NotZero(t, buf.Len(), format)
	}

	var buf bytes.Buffer
	assert.Error(t, Save(line, &buf, "gif", st))
}

func TestCumulativeChartShape(t *testing.T) {
	st := DefaultStyle()
	short := [][]float64{{1, 2}}
	_, err := CumulativeChart(jobs, []Group{{Label: "x", Case: 0}}, short, short, st)
	assert.Error(t, err)
}

func TestErrorBarChartRange(t *testing.T) {
	bc, err := newErrorBarChart(plotter.Values{1, 4, 2}, []float64{0.5, 1, 3}, 10)
	require.NoError(t, err)
	_, _, ymin, ymax := bc.DataRange()
	assert.Equal(t, -1.0, ymin)
	assert.Equal(t, 5.0, ymax)

	_, err = newErrorBarChart(plotter.Values{1}, []float64{1, 2}, 10)
	assert.Error(t, err)
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("pdf"))
	assert.False(t, ValidFormat("PDF"))
}

func TestHistogramChartYRange(t *testing.T) {
	hist := func(values plotter.Values, errs []float64) *Histogram {
		return &Histogram{
			Labels: []string{"lint", "test"},
			Bars:   []Bars{{Label: "low", Color: color.Black, Values: values, Errors: errs}},
		}
	}

	p, err := HistogramChart(hist(plotter.Values{1, 3}, []float64{3, 1}), DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, -2.0, p.Y.Min, "error bars below zero stay visible")
	assert.Equal(t, 4.0, p.Y.Max)

	p, err = HistogramChart(hist(plotter.Values{2, 3}, []float64{1, 1}), DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Y.Min, "bars start at zero")
}
