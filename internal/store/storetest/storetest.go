// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storetest provides scratch databases for tests of code
// that records runs.
package storetest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/cicd-experiments/pipeplot/internal/store"
	_ "github.com/cicd-experiments/pipeplot/internal/store/sqlite3"
)

var mysqlServer = flag.String("mysql", "", "run store tests against the MySQL server at `dsn` (e.g. root:@tcp(localhost:3306)/) instead of in-memory SQLite")

// createEmptyMySQLDB makes a new, empty database for the test and
// drops it when the test finishes.
func createEmptyMySQLDB(t *testing.T) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}
	name := "pipeplot_test_" + hex.EncodeToString(buf)

	db, err := sql.Open("mysql", *mysqlServer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}
	t.Logf("Using database %q", name)
	t.Cleanup(func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	})
	return *mysqlServer + name
}

// NewDB opens an empty testing database, either in-memory SQLite or
// a fresh database on the server named by the -mysql flag. The
// database is closed when the test finishes.
func NewDB(t *testing.T) *store.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *mysqlServer != "" {
		driverName = "mysql"
		dataSourceName = createEmptyMySQLDB(t)
	}
	d, err := store.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	n, err := d.CountRuns(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("found %d run(s), want 0", n)
	}
	return d
}
