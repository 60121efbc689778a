// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the pipeplot configuration: which results
// files to read, how to lay them out, and where charts go.
//
// Settings are resolved in increasing order of precedence: built-in
// defaults, the YAML configuration file, PIPEPLOT_* environment
// variables, and finally command-line flags (applied by the caller).
package config

import (
	"image/color"
	"math"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"
	"gopkg.in/go-playground/colors.v1"
	"gopkg.in/yaml.v3"

	"github.com/cicd-experiments/pipeplot/experiment"
	"github.com/cicd-experiments/pipeplot/latchart"
	"github.com/cicd-experiments/pipeplot/latfmt"
)

// Config is the top-level configuration file.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`

	Style    Style    `yaml:"style"`
	Database Database `yaml:"database"`
	GCS      GCS      `yaml:"gcs"`

	Experiments []Experiment `yaml:"experiments"`
}

// Style configures chart presentation. Colours are "#rrggbb",
// "rgb(r,g,b)", or "rgba(r,g,b,a)" strings.
type Style struct {
	WidthInches    float64 `yaml:"width_inches"`
	HeightInches   float64 `yaml:"height_inches"`
	BarWidthPoints float64 `yaml:"bar_width_points"`
	LineErrorColor string  `yaml:"line_error_color"`
	BarErrorColor  string  `yaml:"bar_error_color"`
	GridColor      string  `yaml:"grid_color"`
}

// Database selects where aggregates are recorded. An empty Driver
// disables recording.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// GCS selects a Cloud Storage bucket charts are published to in
// addition to OutputDir. An empty Bucket disables publishing.
type GCS struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Experiment is the file form of experiment.Experiment.
type Experiment struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`

	// Schema names a built-in schema. SchemaDef, if set, is used
	// instead.
	Schema    string         `yaml:"schema"`
	SchemaDef *latfmt.Schema `yaml:"schema_def"`

	Groups      []Group  `yaml:"groups"`
	LineGroups  []Group  `yaml:"line_groups"`
	Charts      Charts   `yaml:"charts"`
	ExcludeExec []string `yaml:"exclude_exec"`
}

// Group is one legend entry.
type Group struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
	Case  int    `yaml:"case"`
}

// Charts names output files without directory or extension.
type Charts struct {
	Cumulative     string `yaml:"cumulative"`
	ExecHistogram  string `yaml:"exec_histogram"`
	QueueHistogram string `yaml:"queue_histogram"`
}

// Env holds the settings that may be overridden from the
// environment.
type Env struct {
	OutputDir string `envconfig:"OUTPUT_DIR"`
	Format    string `envconfig:"FORMAT"`
	DBDriver  string `envconfig:"DB_DRIVER"`
	DBDSN     string `envconfig:"DB_DSN"`
	GCSBucket string `envconfig:"GCS_BUCKET"`
}

// EnvPrefix is the prefix of every environment variable read by
// ApplyEnv.
const EnvPrefix = "PIPEPLOT"

// Load reads the configuration file at path, fills unset fields
// from Default, and applies environment overrides. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
		c.merge(&file)
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// merge overlays the non-zero fields of f onto c.
func (c *Config) merge(f *Config) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setf := func(dst *float64, src float64) {
		if src != 0 {
			*dst = src
		}
	}
	set(&c.OutputDir, f.OutputDir)
	set(&c.Format, f.Format)
	setf(&c.Style.WidthInches, f.Style.WidthInches)
	setf(&c.Style.HeightInches, f.Style.HeightInches)
	setf(&c.Style.BarWidthPoints, f.Style.BarWidthPoints)
	set(&c.Style.LineErrorColor, f.Style.LineErrorColor)
	set(&c.Style.BarErrorColor, f.Style.BarErrorColor)
	set(&c.Style.GridColor, f.Style.GridColor)
	set(&c.Database.Driver, f.Database.Driver)
	set(&c.Database.DSN, f.Database.DSN)
	set(&c.GCS.Bucket, f.GCS.Bucket)
	set(&c.GCS.Prefix, f.GCS.Prefix)
	set(&c.GCS.CredentialsFile, f.GCS.CredentialsFile)
	if len(f.Experiments) > 0 {
		c.Experiments = f.Experiments
	}
}

// ApplyEnv overrides c with any PIPEPLOT_* environment variables.
func (c *Config) ApplyEnv() error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(err, "read environment")
	}
	if env.OutputDir != "" {
		c.OutputDir = env.OutputDir
	}
	if env.Format != "" {
		c.Format = env.Format
	}
	if env.DBDriver != "" {
		c.Database.Driver = env.DBDriver
	}
	if env.DBDSN != "" {
		c.Database.DSN = env.DBDSN
	}
	if env.GCSBucket != "" {
		c.GCS.Bucket = env.GCSBucket
	}
	return nil
}

// Validate reports the first inconsistency in c.
func (c *Config) Validate() error {
	if !latchart.ValidFormat(c.Format) {
		return errors.Errorf("unsupported format %q (want one of %v)", c.Format, latchart.Formats)
	}
	if c.Database.Driver != "" && c.Database.DSN == "" {
		return errors.Errorf("database driver %s needs a dsn", c.Database.Driver)
	}
	if _, err := c.ChartStyle(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i := range c.Experiments {
		e := &c.Experiments[i]
		if e.Name == "" {
			return errors.Errorf("experiment %d has no name", i)
		}
		if seen[e.Name] {
			return errors.Errorf("duplicate experiment %s", e.Name)
		}
		seen[e.Name] = true
		if _, err := e.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

// ChartStyle converts the style section into a latchart.Style.
func (c *Config) ChartStyle() (latchart.Style, error) {
	st := latchart.DefaultStyle()
	st.Width = vg.Length(c.Style.WidthInches) * vg.Inch
	st.Height = vg.Length(c.Style.HeightInches) * vg.Inch
	st.BarWidth = vg.Points(c.Style.BarWidthPoints)
	if st.Width <= 0 || st.Height <= 0 || st.BarWidth <= 0 {
		return st, errors.Errorf("chart dimensions must be positive")
	}
	var err error
	if st.LineErrorColor, err = ParseColor(c.Style.LineErrorColor); err != nil {
		return st, err
	}
	if st.BarErrorColor, err = ParseColor(c.Style.BarErrorColor); err != nil {
		return st, err
	}
	if st.GridColor, err = ParseColor(c.Style.GridColor); err != nil {
		return st, err
	}
	return st, nil
}

// Resolve converts e into an experiment.Experiment, looking up its
// schema and parsing its colours.
func (e *Experiment) Resolve() (*experiment.Experiment, error) {
	var s *latfmt.Schema
	if e.SchemaDef != nil {
		def := *e.SchemaDef
		if def.Name == "" {
			def.Name = e.Name
		}
		s = &def
	} else {
		var ok bool
		s, ok = latfmt.LookupSchema(e.Schema)
		if !ok {
			return nil, errors.Errorf("experiment %s: unknown schema %q (want one of %v)", e.Name, e.Schema, latfmt.SchemaNames())
		}
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrapf(err, "experiment %s", e.Name)
	}
	if e.Input == "" {
		return nil, errors.Errorf("experiment %s: no input file", e.Name)
	}
	for _, job := range e.ExcludeExec {
		if s.JobIndex(job) < 0 {
			return nil, errors.Errorf("experiment %s: excluded job %q is not in the schema", e.Name, job)
		}
	}

	groups, err := resolveGroups(e.Name, e.Groups)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errors.Errorf("experiment %s: no groups", e.Name)
	}
	lineGroups, err := resolveGroups(e.Name, e.LineGroups)
	if err != nil {
		return nil, err
	}

	return &experiment.Experiment{
		Name:       e.Name,
		Input:      e.Input,
		Schema:     s,
		Groups:     groups,
		LineGroups: lineGroups,
		Charts: experiment.Charts{
			Cumulative:     e.Charts.Cumulative,
			ExecHistogram:  e.Charts.ExecHistogram,
			QueueHistogram: e.Charts.QueueHistogram,
		},
		ExcludeExec: e.ExcludeExec,
	}, nil
}

func resolveGroups(name string, gs []Group) ([]latchart.Group, error) {
	var out []latchart.Group
	for _, g := range gs {
		if g.Case < 0 {
			return nil, errors.Errorf("experiment %s: group %q has negative case %d", name, g.Label, g.Case)
		}
		clr, err := ParseColor(g.Color)
		if err != nil {
			return nil, errors.Wrapf(err, "experiment %s: group %q", name, g.Label)
		}
		out = append(out, latchart.Group{Label: g.Label, Color: clr, Case: g.Case})
	}
	return out, nil
}

// ParseColor parses a hex, rgb(), or rgba() colour string.
func ParseColor(s string) (color.Color, error) {
	c, err := colors.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "bad colour %q", s)
	}
	rgba := c.ToRGBA()
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: uint8(math.Round(rgba.A * 255))}, nil
}

// Resolve converts every experiment whose name is in names, or all
// of them if names is empty.
func (c *Config) Resolve(names ...string) ([]*experiment.Experiment, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []*experiment.Experiment
	found := make(map[string]bool)
	for i := range c.Experiments {
		e := &c.Experiments[i]
		if len(want) > 0 && !want[e.Name] {
			continue
		}
		found[e.Name] = true
		r, err := e.Resolve()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	for _, n := range names {
		if !found[n] {
			return nil, errors.Errorf("unknown experiment %q", n)
		}
	}
	return out, nil
}
