// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package latfmt reads the latency tables written by the CI/CD
// pipeline benchmarking harness.
//
// A results file is a CSV file with a fixed preamble followed by
// groups of rows, one group per test case. The first row of a group
// has a non-empty first cell and carries the test case descriptor.
// Every row is tagged with a Category and holds one latency per job.
// Each repetition of a test case contributes one Exec row and one
// Queued row, in that order; the Queued row closes the repetition.
//
// The layout (header length, column offsets, job names) differs
// between experiments and is described by a Schema.
package latfmt
