// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package experiment ties a results file to the charts drawn from it.
//
// An Experiment is analysed in a fixed sequence: the results file is
// read with the experiment's schema, the repetitions are reduced to
// mean and standard deviation, the cumulative pipeline latency is
// computed, and finally each configured chart is rendered.
package experiment

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"

	"github.com/cicd-experiments/pipeplot/internal/publish"
	"github.com/cicd-experiments/pipeplot/latchart"
	"github.com/cicd-experiments/pipeplot/latfmt"
	"github.com/cicd-experiments/pipeplot/latmath"
)

// Charts names the output files of an experiment, without extension.
// An empty name skips that chart.
type Charts struct {
	Cumulative     string
	ExecHistogram  string
	QueueHistogram string
}

// An Experiment describes one analysis of a results file.
type Experiment struct {
	Name   string
	Input  string
	Schema *latfmt.Schema

	// Groups maps test cases to histogram groups, in legend order.
	Groups []latchart.Group

	// LineGroups overrides Groups for the cumulative chart.
	LineGroups []latchart.Group

	Charts Charts

	// ExcludeExec lists jobs left out of the execution histogram.
	ExcludeExec []string
}

func (e *Experiment) lineGroups() []latchart.Group {
	if len(e.LineGroups) > 0 {
		return e.LineGroups
	}
	return e.Groups
}

// A Result holds everything computed from an experiment's input.
type Result struct {
	Experiment *Experiment
	Table      *latfmt.Table
	Aggregates *latmath.Aggregates

	// Cumulative is indexed [test case][job].
	Cumulative [][]float64
}

// Analyze reads e.Input and computes the aggregates.
func Analyze(e *Experiment) (*Result, error) {
	t, err := latfmt.ReadFile(e.Input, e.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "experiment %s", e.Name)
	}
	return analyze(e, t), nil
}

// AnalyzeReader is like Analyze but reads the results from r.
func AnalyzeReader(e *Experiment, r io.Reader) (*Result, error) {
	t, err := latfmt.Read(r, e.Input, e.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "experiment %s", e.Name)
	}
	return analyze(e, t), nil
}

func analyze(e *Experiment, t *latfmt.Table) *Result {
	agg := latmath.Aggregate(t)
	return &Result{
		Experiment: e,
		Table:      t,
		Aggregates: agg,
		Cumulative: latmath.Cumulative(agg.Exec.Mean, agg.Queued.Mean),
	}
}

// A Chart is a rendered plot and the file name it is written to.
type Chart struct {
	Name string
	Plot *plot.Plot
}

// Charts builds every chart configured for the experiment.
func (r *Result) Charts(st latchart.Style) ([]Chart, error) {
	e := r.Experiment
	jobs := e.Schema.Jobs
	var charts []Chart

	if e.Charts.Cumulative != "" {
		// Error bars show the spread of execution time only.
		p, err := latchart.CumulativeChart(jobs, e.lineGroups(), r.Cumulative, r.Aggregates.Exec.StdDev, st)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: cumulative chart", e.Name)
		}
		charts = append(charts, Chart{e.Charts.Cumulative, p})
	}

	hist := func(name string, cat latfmt.Category, exclude []string) error {
		if name == "" {
			return nil
		}
		g := r.Aggregates.Grid(cat)
		h, err := latchart.HistogramData(jobs, exclude, g.Mean, g.StdDev, e.Groups)
		if err != nil {
			return errors.Wrapf(err, "%s: %s histogram", e.Name, cat)
		}
		p, err := latchart.HistogramChart(h, st)
		if err != nil {
			return errors.Wrapf(err, "%s: %s histogram", e.Name, cat)
		}
		charts = append(charts, Chart{name, p})
		return nil
	}
	if err := hist(e.Charts.ExecHistogram, latfmt.Exec, e.ExcludeExec); err != nil {
		return nil, err
	}
	if err := hist(e.Charts.QueueHistogram, latfmt.Queued, nil); err != nil {
		return nil, err
	}
	return charts, nil
}

// Render writes every chart of r to fs in the given format and
// returns the names of the written files.
func (r *Result) Render(ctx context.Context, fs publish.FS, format string, st latchart.Style) ([]string, error) {
	charts, err := r.Charts(st)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range charts {
		name := c.Name + "." + format
		if err := writeChart(ctx, fs, name, r.Experiment.Name, c.Plot, format, st); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func writeChart(ctx context.Context, fs publish.FS, name, experiment string, p *plot.Plot, format string, st latchart.Style) error {
	w, err := fs.NewWriter(ctx, name, map[string]string{
		"content-type": publish.ContentType(format),
		"experiment":   experiment,
	})
	if err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	if err := latchart.Save(p, w, format, st); err != nil {
		w.CloseWithError(err)
		return errors.Wrapf(err, "render %s", name)
	}
	return errors.Wrapf(w.Close(), "write %s", name)
}
