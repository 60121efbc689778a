// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"sort"

	"github.com/pkg/errors"
)

// A Category classifies a measurement row.
type Category string

const (
	// Exec rows hold job execution latencies.
	Exec Category = "job"
	// Queued rows hold the time a job waited for a runner. A queued
	// row closes a repetition.
	Queued Category = "queued"
)

// DefaultJobs are the pipeline stages measured by the harness, in
// pipeline order.
var DefaultJobs = []string{"lint", "test", "sonar", "build", "cont", "depend", "pre", "bench", "verify", "deploy"}

// A Schema describes the fixed layout of one kind of results file.
//
// All column and row indices are zero-based.
type Schema struct {
	// Name identifies the schema in configuration files.
	Name string `yaml:"name"`

	// HeaderRows is the number of preamble rows to skip.
	HeaderRows int `yaml:"header_rows"`

	// LastRow is the index of the last row to consume. Rows after
	// it are ignored. Zero means no bound.
	LastRow int `yaml:"last_row"`

	// DescriptorColumn holds the integer that describes a test
	// case, such as total lines of code or the worker count.
	DescriptorColumn int `yaml:"descriptor_column"`

	// CategoryColumn holds the row's Category.
	CategoryColumn int `yaml:"category_column"`

	// Jobs names the measured jobs. JobColumns[i] is the column
	// holding the latency of Jobs[i].
	Jobs       []string `yaml:"jobs"`
	JobColumns []int    `yaml:"job_columns"`

	// Repetitions is the number of measurement attempts per test
	// case and category.
	Repetitions int `yaml:"repetitions"`

	// AllowGaps keeps missing repetitions as zeros instead of
	// failing the read.
	AllowGaps bool `yaml:"allow_gaps"`
}

// CodeLength is the layout of code-vs-pipelines-extended.csv.
var CodeLength = Schema{
	Name:             "code-length",
	HeaderRows:       9,
	DescriptorColumn: 2,
	CategoryColumn:   4,
	Jobs:             DefaultJobs,
	JobColumns:       []int{5, 6, 7, 9, 10, 11, 13, 14, 15, 17},
	Repetitions:      3,
}

// CodeLengthExtended reads the same file as CodeLength but stops at
// row 32, which covers the low, mid, high, and extreme code sizes.
var CodeLengthExtended = Schema{
	Name:             "code-length-extended",
	HeaderRows:       9,
	LastRow:          32,
	DescriptorColumn: 2,
	CategoryColumn:   4,
	Jobs:             DefaultJobs,
	JobColumns:       []int{5, 6, 7, 9, 10, 11, 13, 14, 15, 17},
	Repetitions:      3,
}

// Workers is the layout of workers-vs-pipelines.csv.
var Workers = Schema{
	Name:             "workers",
	HeaderRows:       7,
	DescriptorColumn: 0,
	CategoryColumn:   3,
	Jobs:             DefaultJobs,
	JobColumns:       []int{4, 5, 6, 8, 9, 10, 12, 13, 14, 16},
	Repetitions:      3,
}

var presets = map[string]*Schema{
	CodeLength.Name:         &CodeLength,
	CodeLengthExtended.Name: &CodeLengthExtended,
	Workers.Name:            &Workers,
}

// LookupSchema returns a copy of the built-in schema called name.
func LookupSchema(name string) (*Schema, bool) {
	s, ok := presets[name]
	if !ok {
		return nil, false
	}
	c := *s
	c.Jobs = append([]string(nil), s.Jobs...)
	c.JobColumns = append([]int(nil), s.JobColumns...)
	return &c, true
}

// SchemaNames returns the names of the built-in schemas in sorted
// order.
func SchemaNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that s is internally consistent.
func (s *Schema) Validate() error {
	switch {
	case s.HeaderRows < 0:
		return errors.Errorf("schema %s: negative header row count", s.Name)
	case s.LastRow != 0 && s.LastRow < s.HeaderRows:
		return errors.Errorf("schema %s: last row %d precedes header end %d", s.Name, s.LastRow, s.HeaderRows)
	case len(s.Jobs) == 0:
		return errors.Errorf("schema %s: no jobs", s.Name)
	case len(s.Jobs) != len(s.JobColumns):
		return errors.Errorf("schema %s: %d jobs but %d job columns", s.Name, len(s.Jobs), len(s.JobColumns))
	case s.Repetitions <= 0:
		return errors.Errorf("schema %s: repetitions must be positive", s.Name)
	case s.DescriptorColumn < 0 || s.CategoryColumn < 0:
		return errors.Errorf("schema %s: negative column index", s.Name)
	}
	for i, col := range s.JobColumns {
		if col < 0 {
			return errors.Errorf("schema %s: job %s has negative column %d", s.Name, s.Jobs[i], col)
		}
	}
	return nil
}

// JobIndex returns the index of the named job, or -1.
func (s *Schema) JobIndex(job string) int {
	for i, j := range s.Jobs {
		if j == job {
			return i
		}
	}
	return -1
}
