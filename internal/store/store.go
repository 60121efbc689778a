// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store records analysed runs in a SQL database so that
// aggregates from different harness runs can be compared later.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/cicd-experiments/pipeplot/latfmt"
	"github.com/cicd-experiments/pipeplot/latmath"
)

// DB is a high-level interface to a database of runs. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun       *sql.Stmt
	insertAggregate *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure the connection.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Experiment VARCHAR(255) NOT NULL,
	Input VARCHAR(1024) NOT NULL,
	Created BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS Aggregates (
	RunID BIGINT UNSIGNED,
	CaseIndex INTEGER,
	CaseKey VARCHAR(255),
	Descriptor BIGINT,
	JobIndex INTEGER,
	Job VARCHAR(64),
	Category VARCHAR(16),
	Mean DOUBLE,
	StdDev DOUBLE,
	Cumulative DOUBLE,
	PRIMARY KEY (RunID, CaseIndex, JobIndex, Category),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return errors.Wrap(err, "create table")
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Experiment, Input, Created) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertAggregate, err = db.sql.Prepare("INSERT INTO Aggregates(RunID, CaseIndex, CaseKey, Descriptor, JobIndex, Job, Category, Mean, StdDev, Cumulative) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Run is one analysed results file.
type Run struct {
	Experiment string
	Input      string

	Cases []latfmt.Case
	Jobs  []string

	Aggregates *latmath.Aggregates

	// Cumulative is indexed [test case][job]. It may be nil.
	Cumulative [][]float64
}

// InsertRun stores r and every aggregate in it in a single
// transaction and returns the new run ID.
func (db *DB) InsertRun(ctx context.Context, r *Run) (id int64, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, r.Experiment, r.Input, now().Unix())
	if err != nil {
		return 0, errors.Wrap(err, "insert run")
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt := tx.StmtContext(ctx, db.insertAggregate)
	for _, cat := range []latfmt.Category{latfmt.Exec, latfmt.Queued} {
		g := r.Aggregates.Grid(cat)
		for i, c := range r.Cases {
			for j, job := range r.Jobs {
				var cum float64
				if r.Cumulative != nil {
					cum = r.Cumulative[i][j]
				}
				if _, err := stmt.ExecContext(ctx, id, i, c.Key, c.Descriptor, j, job, string(cat), g.Mean[i][j], g.StdDev[i][j], cum); err != nil {
					return 0, errors.Wrapf(err, "insert aggregate case %d job %s", i, job)
				}
			}
		}
	}
	return id, nil
}

// An Aggregate is one stored (test case, job, category) summary.
type Aggregate struct {
	Case       int
	Key        string
	Descriptor int
	Job        string
	Category   latfmt.Category
	Mean       float64
	StdDev     float64

	// Cumulative is the running latency up to and including Job.
	// It is the same for both categories.
	Cumulative float64
}

// RunAggregates returns the aggregates stored for run id, ordered by
// category, test case, and job.
func (db *DB) RunAggregates(ctx context.Context, id int64) ([]Aggregate, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT CaseIndex, CaseKey, Descriptor, Job, Category, Mean, StdDev, Cumulative
FROM Aggregates WHERE RunID = ? ORDER BY Category, CaseIndex, JobIndex`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []Aggregate
	for rows.Next() {
		var a Aggregate
		var cat string
		if err := rows.Scan(&a.Case, &a.Key, &a.Descriptor, &a.Job, &cat, &a.Mean, &a.StdDev, &a.Cumulative); err != nil {
			return nil, err
		}
		a.Category = latfmt.Category(cat)
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// CountRuns returns the number of stored runs of experiment, or of
// all experiments if experiment is empty.
func (db *DB) CountRuns(ctx context.Context, experiment string) (int, error) {
	q, args := "SELECT COUNT(*) FROM Runs", []interface{}{}
	if experiment != "" {
		q += " WHERE Experiment = ?"
		args = append(args, experiment)
	}
	var n int
	err := db.sql.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertAggregate.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
