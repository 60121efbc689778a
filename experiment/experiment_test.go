// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package experiment

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicd-experiments/pipeplot/internal/publish"
	"github.com/cicd-experiments/pipeplot/latchart"
	"github.com/cicd-experiments/pipeplot/latfmt"
)

// uniformCSV returns a workers-layout file with the given number of
// test cases where every execution latency is exec and every queue
// latency is queued.
func uniformCSV(cases int, exec, queued float64) string {
	var b strings.Builder
	for i := 0; i < latfmt.Workers.HeaderRows; i++ {
		b.WriteString("preamble" + strings.Repeat(",", 16) + "\n")
	}
	row := func(first, cat string, v float64) {
		cells := make([]string, 17)
		cells[0] = first
		cells[3] = cat
		for _, c := range latfmt.Workers.JobColumns {
			cells[c] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}
	for i := 0; i < cases; i++ {
		for r := 0; r < 3; r++ {
			first := ""
			if r == 0 {
				first = fmt.Sprint(i + 1)
			}
			row(first, "job", exec)
			row("", "queued", queued)
		}
	}
	return b.String()
}

func testExperiment(t *testing.T) *Experiment {
	s, ok := latfmt.LookupSchema("workers")
	require.True(t, ok)
	return &Experiment{
		Name:   "workers",
		Input:  "workers.csv",
		Schema: s,
		Groups: []latchart.Group{
			{Label: "concurrency=1", Color: color.NRGBA{0, 0x80, 0, 0xff}, Case: 0},
			{Label: "concurrency=2", Color: color.NRGBA{0x64, 0x95, 0xed, 0xff}, Case: 1},
		},
		Charts: Charts{
			Cumulative:     "total_latency_workers",
			ExecHistogram:  "job_execution_histogram_workers",
			QueueHistogram: "job_queued_histogram_workers",
		},
		ExcludeExec: []string{"bench"},
	}
}

func TestAnalyzeUniform(t *testing.T) {
	e := testExperiment(t)
	res, err := AnalyzeReader(e, strings.NewReader(uniformCSV(2, 1.0, 0.5)))
	require.NoError(t, err)

	require.Len(t, res.Table.Cases, 2)
	for i := 0; i < 2; i++ {
		for j := 0; j < 10; j++ {
			assert.Equal(t, 1.0, res.Aggregates.Exec.Mean[i][j])
			assert.Equal(t, 0.0, res.Aggregates.Exec.StdDev[i][j])
			assert.Equal(t, 0.5, res.Aggregates.Queued.Mean[i][j])
		}
		assert.Equal(t, 15.0, res.Cumulative[i][9])
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := testExperiment(t)
	in := uniformCSV(3, 1.25, 0.75)
	a, err := AnalyzeReader(e, strings.NewReader(in))
	require.NoError(t, err)
	b, err := AnalyzeReader(e, strings.NewReader(in))
	require.NoError(t, err)
	if diff := cmp.Diff(a.Aggregates, b.Aggregates); diff != "" {
		t.Errorf("aggregates differ between runs:\n%s", diff)
	}
	if diff := cmp.Diff(a.Cumulative, b.Cumulative); diff != "" {
		t.Errorf("cumulative differs between runs:\n%s", diff)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	e := testExperiment(t)
	e.Input = filepath.Join(t.TempDir(), "missing.csv")
	_, err := Analyze(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experiment workers")
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	e := testExperiment(t)
	res, err := AnalyzeReader(e, strings.NewReader(uniformCSV(2, 1.0, 0.5)))
	require.NoError(t, err)

	dir := t.TempDir()
	names, err := res.Render(ctx, &publish.LocalFS{Dir: dir}, "svg", latchart.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"total_latency_workers.svg",
		"job_execution_histogram_workers.svg",
		"job_queued_histogram_workers.svg",
	}, names)
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(dir, n))
		require.NoError(t, err)
		assert.Contains(t, string(data), "<svg")
	}
}

func TestChartsSkipsUnnamed(t *testing.T) {
	e := testExperiment(t)
	e.Charts.Cumulative = ""
	e.Charts.QueueHistogram = ""
	res, err := AnalyzeReader(e, strings.NewReader(uniformCSV(2, 1.0, 0.5)))
	require.NoError(t, err)

	charts, err := res.Charts(latchart.DefaultStyle())
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, "job_execution_histogram_workers", charts[0].Name)
}

func TestChartsTooFewCases(t *testing.T) {
	e := testExperiment(t)
	res, err := AnalyzeReader(e, strings.NewReader(uniformCSV(1, 1.0, 0.5)))
	require.NoError(t, err)
	_, err = res.Charts(latchart.DefaultStyle())
	assert.Error(t, err)
}
