// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report summarizes analysed experiments as text, CSV, and
// HTML.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cicd-experiments/pipeplot/experiment"
	"github.com/cicd-experiments/pipeplot/internal/texttab"
	"github.com/cicd-experiments/pipeplot/latfmt"
	"github.com/cicd-experiments/pipeplot/latmath"
)

var categories = []latfmt.Category{latfmt.Exec, latfmt.Queued}

func categoryTitle(cat latfmt.Category) string {
	if cat == latfmt.Queued {
		return "queued"
	}
	return "execution"
}

func caseLabel(c latfmt.Case) string {
	return fmt.Sprintf("%s (%d)", c.Key, c.Descriptor)
}

// WriteText writes a per-job summary of r to w: the mean and
// standard deviation of every category, followed by the cumulative
// latency.
func WriteText(w io.Writer, r *experiment.Result) error {
	t := r.Table
	jobs := t.Schema.Jobs
	if _, err := fmt.Fprintf(w, "experiment: %s\ninput: %s\ncases: %d\n", r.Experiment.Name, t.FileName, len(t.Cases)); err != nil {
		return err
	}
	for _, g := range t.Gaps {
		if _, err := fmt.Fprintf(w, "gap: %s\n", g); err != nil {
			return err
		}
	}

	for _, cat := range categories {
		grid := r.Aggregates.Grid(cat)
		var tab texttab.Table
		header(&tab, categoryTitle(cat)+" (s)", t.Cases)
		for j, job := range jobs {
			tab.Row().Cell(job)
			for i := range t.Cases {
				tab.Cellf("%.2f ± %.2f", grid.Mean[i][j], grid.StdDev[i][j])
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := tab.Format(w); err != nil {
			return err
		}
	}

	var tab texttab.Table
	header(&tab, "cumulative (s)", t.Cases)
	for j, job := range jobs {
		tab.Row().Cell(job)
		for i := range t.Cases {
			tab.Cellf("%.2f", r.Cumulative[i][j])
		}
	}
	tab.Row().Cell("total")
	for _, total := range latmath.Totals(r.Cumulative) {
		tab.Cellf("%.2f", total)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return tab.Format(w)
}

func header(tab *texttab.Table, title string, cases []latfmt.Case) {
	tab.Row().Cell(title)
	for i := range cases {
		tab.SetAlign(i+1, texttab.Right)
		tab.Cell(caseLabel(cases[i]))
	}
	tab.Rule()
}

// CSVHeader is the first record written by WriteCSV.
var CSVHeader = []string{"experiment", "case", "key", "descriptor", "job", "category", "mean", "stddev", "cumulative"}

// WriteCSV writes one record per (experiment, test case, category,
// job) to w, preceded by CSVHeader.
func WriteCSV(w io.Writer, results ...*experiment.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range results {
		t := r.Table
		for i, c := range t.Cases {
			for _, cat := range categories {
				grid := r.Aggregates.Grid(cat)
				for j, job := range t.Schema.Jobs {
					rec := []string{
						r.Experiment.Name,
						strconv.Itoa(i),
						c.Key,
						strconv.Itoa(c.Descriptor),
						job,
						string(cat),
						ftoa(grid.Mean[i][j]),
						ftoa(grid.StdDev[i][j]),
						ftoa(r.Cumulative[i][j]),
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "write csv")
}

func ftoa(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
