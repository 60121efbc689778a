// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"fmt"
	"strings"
)

// A Case is one test case: a fixed code size or worker count.
type Case struct {
	// Key is the raw text of the first cell of the case's first row.
	Key string

	// Descriptor is the integer read from the schema's
	// descriptor column.
	Descriptor int

	// Line is the line of the case's first row in the input.
	Line int
}

// A Table holds every measurement of a results file.
//
// Exec and Queued are indexed [test case][job][repetition]. Slots
// that no row filled are zero.
type Table struct {
	Schema   *Schema
	FileName string
	Cases    []Case

	Exec   [][][]float64
	Queued [][][]float64

	// Gaps lists test cases with missing or overwritten
	// repetitions. It is only non-empty when Schema.AllowGaps is
	// set; otherwise Read fails instead.
	Gaps []Gap

	fill [][2]slotFill
}

type slotFill struct {
	writes int
	filled []bool
}

func (t *Table) addCase(c Case) {
	t.Cases = append(t.Cases, c)
	t.Exec = append(t.Exec, t.newCaseTable())
	t.Queued = append(t.Queued, t.newCaseTable())
	reps := t.Schema.Repetitions
	t.fill = append(t.fill, [2]slotFill{{filled: make([]bool, reps)}, {filled: make([]bool, reps)}})
}

func (t *Table) newCaseTable() [][]float64 {
	jobs := make([][]float64, len(t.Schema.Jobs))
	for j := range jobs {
		jobs[j] = make([]float64, t.Schema.Repetitions)
	}
	return jobs
}

// Series returns the 3-D table for cat.
func (t *Table) Series(cat Category) [][][]float64 {
	if cat == Queued {
		return t.Queued
	}
	return t.Exec
}

// Descriptors returns the descriptor of every test case, in input
// order.
func (t *Table) Descriptors() []int {
	ds := make([]int, len(t.Cases))
	for i, c := range t.Cases {
		ds[i] = c.Descriptor
	}
	return ds
}

func (t *Table) store(cat Category, testCase, rep int, values []float64) {
	series := t.Series(cat)
	for j, v := range values {
		series[testCase][j][rep] = v
	}
	f := &t.fill[testCase][categoryIndex(cat)]
	f.writes++
	f.filled[rep] = true
}

func categoryIndex(cat Category) int {
	if cat == Queued {
		return 1
	}
	return 0
}

// gaps compares the recorded fills against the expected number of
// repetitions.
func (t *Table) gaps() []Gap {
	var gaps []Gap
	for i := range t.Cases {
		for _, cat := range []Category{Exec, Queued} {
			f := t.fill[i][categoryIndex(cat)]
			var missing []int
			for rep, ok := range f.filled {
				if !ok {
					missing = append(missing, rep)
				}
			}
			if len(missing) == 0 && f.writes == t.Schema.Repetitions {
				continue
			}
			gaps = append(gaps, Gap{
				Case:     i,
				Key:      t.Cases[i].Key,
				Category: cat,
				Rows:     f.writes,
				Missing:  missing,
			})
		}
	}
	return gaps
}

// A Gap describes a test case whose repetitions for one category do
// not line up with the schema.
type Gap struct {
	Case     int
	Key      string
	Category Category

	// Rows is the number of rows seen for this category.
	Rows int

	// Missing lists the repetition slots no row filled.
	Missing []int
}

func (g Gap) String() string {
	s := fmt.Sprintf("case %d (%s) %s: %d rows", g.Case, g.Key, g.Category, g.Rows)
	if len(g.Missing) > 0 {
		s += fmt.Sprintf(", missing repetitions %v", g.Missing)
	}
	return s
}

// An IncompleteError reports test cases that do not have exactly
// Schema.Repetitions repetitions per category.
type IncompleteError struct {
	FileName string
	Gaps     []Gap
}

func (e *IncompleteError) Error() string {
	parts := make([]string, len(e.Gaps))
	for i, g := range e.Gaps {
		parts[i] = g.String()
	}
	return fmt.Sprintf("%s: incomplete repetitions: %s", e.FileName, strings.Join(parts, "; "))
}
