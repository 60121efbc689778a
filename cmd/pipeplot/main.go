// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pipeplot charts the latency of CI/CD pipeline benchmark runs.
//
// Usage:
//
//	pipeplot [flags]
//
// Pipeplot reads the results files of every configured experiment,
// reduces the repeated measurements of each job to their mean and
// standard deviation, and draws three charts per experiment: the
// cumulative latency through the pipeline, and histograms of job
// execution and queue times. A summary of each experiment is printed
// on standard output.
//
// Without a configuration file, pipeplot runs the built-in
// code-length, code-length-extended, and workers experiments, reading
// docs/results/ and writing PDF charts to docs/imgs/.
//
// The flags are:
//
//	--config file
//		Read settings and experiments from the YAML file.
//	--experiment name
//		Only run the named experiment. May be repeated.
//	--list
//		Print the configured experiments and exit.
//	--output dir
//		Write charts below dir.
//	--format fmt
//		Chart format: pdf, png, svg, or eps.
//	--csv
//		Also write the aggregates of every experiment to aggregates.csv.
//	--html
//		Also write an index.html page linking every chart.
//	--db-driver driver, --dsn dsn
//		Record every run's aggregates in a sqlite3 or mysql database.
//	--gcs-bucket bucket, --gcs-prefix prefix, --credentials file
//		Also publish output files to a Cloud Storage bucket.
//	--log-level level
//		One of trace, debug, info, warn, or error.
//
// Settings may also be given in PIPEPLOT_OUTPUT_DIR, PIPEPLOT_FORMAT,
// PIPEPLOT_DB_DRIVER, PIPEPLOT_DB_DSN, and PIPEPLOT_GCS_BUCKET.
// Flags take precedence over the environment, which takes precedence
// over the configuration file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"google.golang.org/api/option"

	"github.com/cicd-experiments/pipeplot/experiment"
	"github.com/cicd-experiments/pipeplot/internal/config"
	"github.com/cicd-experiments/pipeplot/internal/publish"
	"github.com/cicd-experiments/pipeplot/internal/publish/gcs"
	"github.com/cicd-experiments/pipeplot/internal/report"
	"github.com/cicd-experiments/pipeplot/internal/store"
	_ "github.com/cicd-experiments/pipeplot/internal/store/sqlite3"
	"github.com/cicd-experiments/pipeplot/internal/texttab"
)

var exit = os.Exit // replaced during testing

func main() {
	if err := pipeplot(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			exit(2)
		}
		hclog.Default().Error("pipeplot failed", "error", err)
		exit(1)
	}
}

type flags struct {
	config      string
	experiments []string
	list        bool
	output      string
	format      string
	csv         bool
	html        bool
	dbDriver    string
	dsn         string
	gcsBucket   string
	gcsPrefix   string
	credentials string
	logLevel    string
}

func parseFlags(stderr io.Writer, args []string) (*flag.FlagSet, *flags, error) {
	var f flags
	fs := flag.NewFlagSet("pipeplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.config, "config", "c", "", "read settings from YAML `file`")
	fs.StringSliceVarP(&f.experiments, "experiment", "e", nil, "only run experiment `name` (repeatable)")
	fs.BoolVar(&f.list, "list", false, "print the configured experiments and exit")
	fs.StringVarP(&f.output, "output", "o", "", "write charts below `dir`")
	fs.StringVar(&f.format, "format", "", "chart `format`: pdf, png, svg, or eps")
	fs.BoolVar(&f.csv, "csv", false, "also write aggregates.csv")
	fs.BoolVar(&f.html, "html", false, "also write an index.html report")
	fs.StringVar(&f.dbDriver, "db-driver", "", "record runs with SQL `driver` (sqlite3 or mysql)")
	fs.StringVar(&f.dsn, "dsn", "", "database `dsn`")
	fs.StringVar(&f.gcsBucket, "gcs-bucket", "", "also publish to Cloud Storage `bucket`")
	fs.StringVar(&f.gcsPrefix, "gcs-prefix", "", "object name `prefix` in the bucket")
	fs.StringVar(&f.credentials, "credentials", "", "service account credentials `file` for Cloud Storage")
	fs.StringVar(&f.logLevel, "log-level", "info", "log `level`")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pipeplot [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, nil, errors.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return fs, &f, nil
}

// apply overrides c with every flag given on the command line.
func (f *flags) apply(fs *flag.FlagSet, c *config.Config) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("output", &c.OutputDir, f.output)
	set("format", &c.Format, f.format)
	set("db-driver", &c.Database.Driver, f.dbDriver)
	set("dsn", &c.Database.DSN, f.dsn)
	set("gcs-bucket", &c.GCS.Bucket, f.gcsBucket)
	set("gcs-prefix", &c.GCS.Prefix, f.gcsPrefix)
	set("credentials", &c.GCS.CredentialsFile, f.credentials)
}

func pipeplot(stdout, stderr io.Writer, args []string) error {
	fs, f, err := parseFlags(stderr, args)
	if err != nil {
		return err
	}
	level := hclog.LevelFromString(f.logLevel)
	if level == hclog.NoLevel {
		return errors.Errorf("unknown log level %q", f.logLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:        "pipeplot",
		Level:       level,
		Output:      stderr,
		DisableTime: true,
	})

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if f.list {
		return list(stdout, cfg)
	}

	exps, err := cfg.Resolve(f.experiments...)
	if err != nil {
		return err
	}
	st, err := cfg.ChartStyle()
	if err != nil {
		return err
	}

	ctx := context.Background()
	out, closeOut, err := outputs(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeOut()

	var db *store.DB
	if cfg.Database.Driver != "" {
		db, err = store.OpenSQL(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return errors.Wrapf(err, "open %s database", cfg.Database.Driver)
		}
		defer db.Close()
	}

	var results []*experiment.Result
	page := &report.Page{Title: "CI/CD pipeline latency"}
	for i, e := range exps {
		log := logger.Named(e.Name)
		res, err := experiment.Analyze(e)
		if err != nil {
			return err
		}
		log.Debug("analysed", "input", e.Input, "cases", len(res.Table.Cases))
		for _, g := range res.Table.Gaps {
			log.Warn("zero-filled gap", "gap", g.String())
		}

		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if err := report.WriteText(stdout, res); err != nil {
			return err
		}

		names, err := res.Render(ctx, out, cfg.Format, st)
		if err != nil {
			return err
		}
		for _, name := range names {
			log.Info("wrote chart", "file", name)
		}

		if db != nil {
			id, err := db.InsertRun(ctx, &store.Run{
				Experiment: e.Name,
				Input:      res.Table.FileName,
				Cases:      res.Table.Cases,
				Jobs:       e.Schema.Jobs,
				Aggregates: res.Aggregates,
				Cumulative: res.Cumulative,
			})
			if err != nil {
				return errors.Wrapf(err, "record %s", e.Name)
			}
			log.Info("recorded run", "id", id)
		}

		results = append(results, res)
		page.Sections = append(page.Sections, report.NewSection(res, names, cfg.Format))
	}

	if f.csv {
		if err := writeFile(ctx, out, "aggregates.csv", func(w io.Writer) error {
			return report.WriteCSV(w, results...)
		}); err != nil {
			return err
		}
		logger.Info("wrote aggregates", "file", "aggregates.csv")
	}
	if f.html {
		if err := writeFile(ctx, out, "index.html", func(w io.Writer) error {
			return report.WriteHTML(w, page)
		}); err != nil {
			return err
		}
		logger.Info("wrote report", "file", "index.html")
	}
	return nil
}

// outputs returns the FS output files are written to and a function
// releasing it.
func outputs(ctx context.Context, cfg *config.Config, logger hclog.Logger) (publish.FS, func(), error) {
	local := &publish.LocalFS{Dir: cfg.OutputDir}
	if cfg.GCS.Bucket == "" {
		return local, func() {}, nil
	}
	var opts []option.ClientOption
	if cfg.GCS.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCS.CredentialsFile))
	}
	remote, err := gcs.NewFS(ctx, cfg.GCS.Bucket, cfg.GCS.Prefix, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("publishing to Cloud Storage", "bucket", cfg.GCS.Bucket, "prefix", cfg.GCS.Prefix)
	return publish.Tee(local, remote), func() { remote.Close() }, nil
}

func writeFile(ctx context.Context, fs publish.FS, name string, write func(io.Writer) error) error {
	ext := name[strings.LastIndex(name, ".")+1:]
	w, err := fs.NewWriter(ctx, name, map[string]string{"content-type": publish.ContentType(ext)})
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.CloseWithError(err)
		return errors.Wrapf(err, "write %s", name)
	}
	return errors.Wrapf(w.Close(), "write %s", name)
}

func list(w io.Writer, cfg *config.Config) error {
	var tab texttab.Table
	tab.Row().Cell("name").Cell("schema").Cell("input").Cell("charts").Rule()
	for _, e := range cfg.Experiments {
		schema := e.Schema
		if e.SchemaDef != nil {
			schema = "(custom)"
		}
		var charts []string
		for _, c := range []string{e.Charts.Cumulative, e.Charts.ExecHistogram, e.Charts.QueueHistogram} {
			if c != "" {
				charts = append(charts, c)
			}
		}
		tab.Row().Cell(e.Name).Cell(schema).Cell(e.Input).Cell(strings.Join(charts, ","))
	}
	return tab.Format(w)
}
