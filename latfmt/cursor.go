// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

// A cursor tracks which (test case, repetition) slot the next
// measurement row is written to.
//
// The repetition index is not reset when a new test case starts; it
// only wraps after reps Queued rows. A test case that is short of
// repetitions therefore shifts the slots of the following cases,
// which is reported as a gap.
type cursor struct {
	reps     int
	testCase int
	rep      int
}

func newCursor(reps int) cursor {
	return cursor{reps: reps, testCase: -1}
}

// startCase moves to the next test case.
func (c *cursor) startCase() {
	c.testCase++
}

// started reports whether any test case has been opened.
func (c *cursor) started() bool {
	return c.testCase >= 0
}

// slot returns the current test case and repetition.
func (c *cursor) slot() (testCase, rep int) {
	return c.testCase, c.rep
}

// consume records that a row of category cat has been stored. A
// Queued row closes the current repetition.
func (c *cursor) consume(cat Category) {
	if cat != Queued {
		return
	}
	c.rep = (c.rep + 1) % c.reps
}
