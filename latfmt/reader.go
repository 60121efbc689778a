// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latfmt

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A ParseError reports a malformed cell or row.
type ParseError struct {
	FileName string
	Line     int
	Column   int // -1 if the whole row is at fault
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: column %d: %s", e.FileName, e.Line, e.Column, e.Msg)
}

// ReadFile reads the results file at path using schema s.
func ReadFile(path string, s *Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open results")
	}
	defer f.Close()
	return Read(f, path, s)
}

// Read parses a results file from r using schema s. fileName is used
// in error messages; it is purely diagnostic.
//
// Malformed cells fail with a *ParseError. If a test case does not
// have exactly s.Repetitions rows per category, Read fails with an
// *IncompleteError unless s.AllowGaps is set, in which case the
// missing slots stay zero and are listed in Table.Gaps.
func Read(r io.Reader, fileName string, s *Schema) (*Table, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	t := &Table{Schema: s, FileName: fileName}
	cur := newCursor(s.Repetitions)
	values := make([]float64, len(s.Jobs))

	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", fileName)
		}
		if row < s.HeaderRows {
			continue
		}
		if s.LastRow != 0 && row > s.LastRow {
			// Keep draining so that trailing CSV syntax
			// errors are still reported.
			continue
		}
		line, _ := cr.FieldPos(0)
		perr := func(col int, format string, args ...interface{}) error {
			return &ParseError{fileName, line, col, fmt.Sprintf(format, args...)}
		}

		if len(rec) > 0 && rec[0] != "" {
			if s.DescriptorColumn >= len(rec) {
				return nil, perr(-1, "row has %d fields, descriptor is in column %d", len(rec), s.DescriptorColumn)
			}
			d, err := strconv.Atoi(strings.TrimSpace(rec[s.DescriptorColumn]))
			if err != nil {
				return nil, perr(s.DescriptorColumn, "bad descriptor %q", rec[s.DescriptorColumn])
			}
			t.addCase(Case{Key: rec[0], Descriptor: d, Line: line})
			cur.startCase()
		}

		if s.CategoryColumn >= len(rec) {
			return nil, perr(-1, "row has %d fields, category is in column %d", len(rec), s.CategoryColumn)
		}
		cat := Category(strings.TrimSpace(rec[s.CategoryColumn]))
		if cat != Exec && cat != Queued {
			continue
		}
		if !cur.started() {
			return nil, perr(-1, "%s row before the first test case", cat)
		}
		for j, col := range s.JobColumns {
			if col >= len(rec) {
				return nil, perr(-1, "row has %d fields, job %s is in column %d", len(rec), s.Jobs[j], col)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, perr(col, "bad %s latency %q for job %s", cat, rec[col], s.Jobs[j])
			}
			values[j] = v
		}
		tc, rep := cur.slot()
		t.store(cat, tc, rep, values)
		cur.consume(cat)
	}

	gaps := t.gaps()
	if len(gaps) > 0 && !s.AllowGaps {
		return nil, &IncompleteError{FileName: fileName, Gaps: gaps}
	}
	t.Gaps = gaps
	return t, nil
}
