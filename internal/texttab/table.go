// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables with aligned columns.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table accumulates rows of cells and formats them with each column
// padded to its widest cell.
//
// Row and Cell return the Table so calls can be chained.
type Table struct {
	rows  [][]string
	align []Align

	// rule marks rows followed by a horizontal rule.
	rule map[int]bool
}

// Align is the horizontal alignment of a cell within its column.
type Align int

const (
	Left Align = iota
	Right
)

func (a Align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	if a == Right {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// SetAlign sets the default alignment of column col.
func (t *Table) SetAlign(col int, a Align) *Table {
	for len(t.align) <= col {
		t.align = append(t.align, Left)
	}
	t.align[col] = a
	return t
}

// Row starts a new row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Rule draws a line of dashes under the current row.
func (t *Table) Rule() *Table {
	if t.rule == nil {
		t.rule = make(map[int]bool)
	}
	t.rule[len(t.rows)-1] = true
	return t
}

// Cell appends a cell to the current row, aligned as its column.
func (t *Table) Cell(value string) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	last := len(t.rows) - 1
	t.rows[last] = append(t.rows[last], value)
	return t
}

// Cellf appends a formatted cell.
func (t *Table) Cellf(format string, args ...interface{}) *Table {
	return t.Cell(fmt.Sprintf(format, args...))
}

func (t *Table) colAlign(col int) Align {
	if col < len(t.align) {
		return t.align[col]
	}
	return Left
}

// Format writes the table to w. Trailing spaces are trimmed from
// every line.
func (t *Table) Format(w io.Writer) error {
	const sep = "  "

	var widths []int
	for _, row := range t.rows {
		for col, c := range row {
			if col >= len(widths) {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(c); n > widths[col] {
				widths[col] = n
			}
		}
	}
	total := 0
	for i, n := range widths {
		if i > 0 {
			total += len(sep)
		}
		total += n
	}

	var line strings.Builder
	for r, row := range t.rows {
		line.Reset()
		for col, c := range row {
			if col > 0 {
				line.WriteString(sep)
			}
			line.WriteString(t.colAlign(col).pad(c, widths[col]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
		if t.rule[r] {
			if _, err := fmt.Fprintln(w, strings.Repeat("-", total)); err != nil {
				return err
			}
		}
	}
	return nil
}
