// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicd-experiments/pipeplot/experiment"
	"github.com/cicd-experiments/pipeplot/latfmt"
)

var tinySchema = latfmt.Schema{
	Name:             "tiny",
	HeaderRows:       1,
	DescriptorColumn: 1,
	CategoryColumn:   2,
	Jobs:             []string{"build", "deploy"},
	JobColumns:       []int{3, 4},
	Repetitions:      2,
}

func tinyResult(t *testing.T) *experiment.Result {
	t.Helper()
	s := tinySchema
	r, err := experiment.Analyze(&experiment.Experiment{
		Name:   "tiny",
		Input:  "testdata/tiny.csv",
		Schema: &s,
	})
	require.NoError(t, err)
	return r
}

// compareGolden checks got against the named file in testdata. On
// mismatch it writes got next to the golden file for inspection.
func compareGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	want, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	if d := cmp.Diff(string(want), string(got)); d != "" {
		gotPath := "testdata/" + name + ".got"
		if err := os.WriteFile(gotPath, got, 0666); err != nil {
			t.Error("error writing output: ", err)
		}
		t.Errorf("%s mismatch (-want +got):\n%s", name, d)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, tinyResult(t)))
	compareGolden(t, "tiny.txt", buf.Bytes())
}

func TestWriteTextGaps(t *testing.T) {
	s := tinySchema
	s.AllowGaps = true
	data := "name,size,kind,build,deploy\nsmall,10,job,1,2\n,,queued,1,1\n"
	r, err := experiment.AnalyzeReader(&experiment.Experiment{Name: "gappy", Input: "gappy.csv", Schema: &s}, strings.NewReader(data))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "gap: ")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tinyResult(t)))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	// Header plus 2 cases × 2 categories × 2 jobs.
	require.Len(t, recs, 9)
	assert.Equal(t, CSVHeader, recs[0])
	assert.Equal(t, []string{"tiny", "0", "small", "10", "build", "job", "2", "1", "3"}, recs[1])
	assert.Equal(t, []string{"tiny", "0", "small", "10", "deploy", "queued", "0.5", "0", "5.5"}, recs[4])
	assert.Equal(t, []string{"tiny", "1", "large", "20", "deploy", "job", "5", "1", "9"}, recs[6])
}

func TestWriteHTML(t *testing.T) {
	r := tinyResult(t)
	p := &Page{
		Title: "latency <report>",
		Sections: []Section{
			NewSection(r, []string{"tiny_exec.svg"}, "svg"),
			NewSection(r, []string{"tiny_exec.pdf"}, "pdf"),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, p))
	out := buf.String()

	assert.Contains(t, out, "<title>latency &lt;report&gt;</title>")
	assert.Contains(t, out, `<img src="tiny_exec.svg"`)
	assert.Contains(t, out, `<a href="tiny_exec.pdf">`)
	assert.Contains(t, out, "<th>small (10)</th>")
	assert.Contains(t, out, "<td>9.00</td>")
}

func TestWriteHTMLEscapesNames(t *testing.T) {
	s := NewSection(tinyResult(t), []string{"a b.svg"}, "svg")
	s.Name = `code length "extended" <v2>`
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, &Page{Title: "t", Sections: []Section{s}}))
	assert.Contains(t, buf.String(), "<h2>code length &#34;extended&#34; &lt;v2&gt;</h2>")
}
