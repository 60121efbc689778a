// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cicd-experiments/pipeplot/internal/store"
	"github.com/cicd-experiments/pipeplot/internal/store/storetest"
	"github.com/cicd-experiments/pipeplot/latfmt"
	"github.com/cicd-experiments/pipeplot/latmath"
)

func testRun() *store.Run {
	agg := &latmath.Aggregates{
		Exec: latmath.Grid{
			Mean:   [][]float64{{1, 2}, {3, 4}},
			StdDev: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		},
		Queued: latmath.Grid{
			Mean:   [][]float64{{0.5, 0.5}, {1, 1}},
			StdDev: [][]float64{{0, 0}, {0, 0}},
		},
	}
	return &store.Run{
		Experiment: "workers",
		Input:      "docs/results/workers-vs-pipelines.csv",
		Cases:      []latfmt.Case{{Key: "1", Descriptor: 1}, {Key: "2", Descriptor: 2}},
		Jobs:       []string{"lint", "test"},
		Aggregates: agg,
		Cumulative: latmath.Cumulative(agg.Exec.Mean, agg.Queued.Mean),
	}
}

func TestInsertRun(t *testing.T) {
	store.SetNow(time.Unix(0, 0))
	defer store.SetNow(time.Time{})

	ctx := context.Background()
	db := storetest.NewDB(t)

	id, err := db.InsertRun(ctx, testRun())
	require.NoError(t, err)

	aggs, err := db.RunAggregates(ctx, id)
	require.NoError(t, err)
	require.Len(t, aggs, 8)

	assert.Equal(t, store.Aggregate{
		Case: 1, Key: "2", Descriptor: 2, Job: "test", Category: latfmt.Exec,
		Mean: 4, StdDev: 0.4, Cumulative: 9,
	}, aggs[3])
	assert.Equal(t, latfmt.Queued, aggs[4].Category)
	assert.Equal(t, 1.5, aggs[4].Cumulative)
}

func TestCountRuns(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)

	for i := 0; i < 3; i++ {
		r := testRun()
		if i == 2 {
			r.Experiment = "code-length"
		}
		id, err := db.InsertRun(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	n, err := db.CountRuns(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.CountRuns(ctx, "workers")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertRunWithoutCumulative(t *testing.T) {
	ctx := context.Background()
	db := storetest.NewDB(t)

	r := testRun()
	r.Cumulative = nil
	id, err := db.InsertRun(ctx, r)
	require.NoError(t, err)

	aggs, err := db.RunAggregates(ctx, id)
	require.NoError(t, err)
	for _, a := range aggs {
		assert.Zero(t, a.Cumulative)
	}
}

func TestRunAggregatesUnknownRun(t *testing.T) {
	db := storetest.NewDB(t)
	aggs, err := db.RunAggregates(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, aggs)
}
