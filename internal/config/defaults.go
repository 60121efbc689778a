// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

const (
	green          = "#008000"
	cornflowerblue = "#6495ed"
	goldenrod      = "#daa520"
	slategrey      = "#708090"
)

// Default returns the configuration of the published experiments.
func Default() *Config {
	low := Group{Label: "low", Color: green, Case: 0}
	mid := Group{Label: "mid", Color: cornflowerblue, Case: 1}
	high := Group{Label: "high", Color: goldenrod, Case: 2}
	extreme := Group{Label: "extreme", Color: slategrey, Case: 3}
	conc1 := Group{Label: "concurrency=1", Color: green, Case: 0}
	conc2 := Group{Label: "concurrency=2", Color: cornflowerblue, Case: 1}

	return &Config{
		OutputDir: "docs/imgs",
		Format:    "pdf",
		Style: Style{
			WidthInches:    6.4,
			HeightInches:   4.8,
			BarWidthPoints: 7,
			LineErrorColor: "#ff0000",
			BarErrorColor:  "#dc143c",
			GridColor:      "#c6c6c6",
		},
		Experiments: []Experiment{
			{
				Name:       "code-length",
				Input:      "docs/results/code-vs-pipelines-extended.csv",
				Schema:     "code-length",
				Groups:     []Group{low, mid, high},
				LineGroups: []Group{high, mid, low},
				Charts: Charts{
					Cumulative:     "total_latency_pipelines",
					ExecHistogram:  "job_execution_histogram",
					QueueHistogram: "job_queued_histogram",
				},
				ExcludeExec: []string{"bench"},
			},
			{
				Name:   "code-length-extended",
				Input:  "docs/results/code-vs-pipelines-extended.csv",
				Schema: "code-length-extended",
				Groups: []Group{low, mid, high, extreme},
				Charts: Charts{
					ExecHistogram:  "job_execution_extended_histogram",
					QueueHistogram: "job_queued_extended_histogram",
				},
				ExcludeExec: []string{"bench"},
			},
			{
				Name:   "workers",
				Input:  "docs/results/workers-vs-pipelines.csv",
				Schema: "workers",
				Groups: []Group{conc1, conc2},
				Charts: Charts{
					Cumulative:     "total_latency_workers",
					ExecHistogram:  "job_execution_histogram_workers",
					QueueHistogram: "job_queued_histogram_workers",
				},
				ExcludeExec: []string{"bench"},
			},
		},
	}
}
