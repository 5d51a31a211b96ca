// Package metrics exposes the judge's Prometheus instrumentation: how many
// jobs ran and to what verdict, how long a full evaluation took, and how
// long individual cases took broken down by problem and comparison type.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csoj",
		Name:      "jobs_total",
		Help:      "Total number of evaluated jobs, by final verdict.",
	}, []string{"result"})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "csoj",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock time to evaluate one job end to end.",
		Buckets:   prometheus.DefBuckets,
	})

	CaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "csoj",
		Name:      "case_duration_seconds",
		Help:      "Wall-clock time to run a single test case.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"problem", "type"})
)
