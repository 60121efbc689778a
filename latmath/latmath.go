// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latmath reduces repeated latency measurements to summary
// statistics.
package latmath

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/cicd-experiments/pipeplot/latfmt"
)

// A Summary summarizes the repetitions of one (test case, job)
// measurement.
type Summary struct {
	Mean float64

	// StdDev is the population standard deviation: the divisor is
	// N, not N-1.
	StdDev float64

	N int
}

// Summarize computes the mean and population standard deviation of
// xs. For an empty sample, Mean and StdDev are NaN.
func Summarize(xs []float64) Summary {
	n := len(xs)
	switch n {
	case 0:
		return Summary{Mean: math.NaN(), StdDev: math.NaN()}
	case 1:
		return Summary{Mean: xs[0], N: 1}
	}
	s := stats.Sample{Xs: xs}
	// Sample.Variance uses the unbiased N-1 estimator.
	v := s.Variance() * float64(n-1) / float64(n)
	return Summary{Mean: s.Mean(), StdDev: math.Sqrt(v), N: n}
}

// A Grid holds per-(test case, job) summaries of one category.
// Mean and StdDev are indexed [test case][job].
type Grid struct {
	Mean   [][]float64
	StdDev [][]float64
}

func summarizeSeries(series [][][]float64) Grid {
	g := Grid{
		Mean:   make([][]float64, len(series)),
		StdDev: make([][]float64, len(series)),
	}
	for i, jobs := range series {
		g.Mean[i] = make([]float64, len(jobs))
		g.StdDev[i] = make([]float64, len(jobs))
		for j, reps := range jobs {
			s := Summarize(reps)
			g.Mean[i][j] = s.Mean
			g.StdDev[i][j] = s.StdDev
		}
	}
	return g
}

// Aggregates holds the reduced execution and queue tables of a
// results file.
type Aggregates struct {
	Exec   Grid
	Queued Grid
}

// Grid returns the grid for cat.
func (a *Aggregates) Grid(cat latfmt.Category) Grid {
	if cat == latfmt.Queued {
		return a.Queued
	}
	return a.Exec
}

// Aggregate reduces the repetition axis of t.
func Aggregate(t *latfmt.Table) *Aggregates {
	return &Aggregates{
		Exec:   summarizeSeries(t.Exec),
		Queued: summarizeSeries(t.Queued),
	}
}

// Cumulative returns, for each test case, the running sum of
// execution plus queue latency along the job sequence:
//
//	cum[i][k] = Σ_{j≤k} exec[i][j] + queued[i][j]
//
// exec and queued must have the same shape.
func Cumulative(exec, queued [][]float64) [][]float64 {
	cum := make([][]float64, len(exec))
	for i := range exec {
		cum[i] = make([]float64, len(exec[i]))
		total := 0.0
		for j := range exec[i] {
			total += exec[i][j] + queued[i][j]
			cum[i][j] = total
		}
	}
	return cum
}

// Totals returns the last cumulative entry of every test case: the
// average end-to-end latency of the whole pipeline.
func Totals(cum [][]float64) []float64 {
	ts := make([]float64, len(cum))
	for i, row := range cum {
		if len(row) > 0 {
			ts[i] = row[len(row)-1]
		}
	}
	return ts
}
