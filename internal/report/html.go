// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"

	"github.com/google/safehtml/template"

	"github.com/cicd-experiments/pipeplot/experiment"
	"github.com/cicd-experiments/pipeplot/latmath"
)

// A Page is the data behind the HTML report.
type Page struct {
	Title    string
	Sections []Section
}

// A Section describes one experiment.
type Section struct {
	Name  string
	Input string

	// Images and Links are chart files relative to the report.
	// Formats browsers can display inline go in Images.
	Images []string
	Links  []string

	Cases  []string
	Totals []string
}

// NewSection summarizes r and the chart files rendered from it.
func NewSection(r *experiment.Result, charts []string, format string) Section {
	s := Section{Name: r.Experiment.Name, Input: r.Table.FileName}
	switch format {
	case "svg", "png":
		s.Images = charts
	default:
		s.Links = charts
	}
	for _, c := range r.Table.Cases {
		s.Cases = append(s.Cases, caseLabel(c))
	}
	for _, total := range latmath.Totals(r.Cumulative) {
		s.Totals = append(s.Totals, fmt.Sprintf("%.2f", total))
	}
	return s
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #c6c6c6; padding: 0.2em 0.6em; text-align: right; }
img { max-width: 48%; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Sections}}
<section>
<h2>{{.Name}}</h2>
<p>Input: <code>{{.Input}}</code></p>
<table>
<tr><th>test case</th>{{range .Cases}}<th>{{.}}</th>{{end}}</tr>
<tr><th>end-to-end latency (s)</th>{{range .Totals}}<td>{{.}}</td>{{end}}</tr>
</table>
{{range .Images}}<img src="{{.}}" alt="{{.}}">
{{end}}
{{if .Links}}<ul>
{{range .Links}}<li><a href="{{.}}">{{.}}</a></li>
{{end}}</ul>{{end}}
</section>
{{end}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("report").Parse(pageHTML))

// WriteHTML renders p to w.
func WriteHTML(w io.Writer, p *Page) error {
	return pageTmpl.Execute(w, p)
}
