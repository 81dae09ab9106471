// Package metrics registers the Prometheus metrics exported by statuslog.
// Metrics are registered on the default registry and served by the API's
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit results used as label values.
const (
	ResultCommitted = "committed"
	ResultUnchanged = "unchanged"
	ResultConflict  = "conflict"
	ResultError     = "error"
)

// Commit metrics, updated by the update coordinator.
var (
	// CommitsTotal counts finished commits by blob and outcome.
	CommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statuslog_commits_total",
			Help: "Finished read-mutate-write commits by blob path and result",
		},
		[]string{"path", "result"},
	)

	// CommitConflictsTotal counts individual compare-and-swap failures,
	// including those that were retried successfully.
	CommitConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statuslog_commit_conflicts_total",
			Help: "Compare-and-swap conflicts seen while committing, by blob path",
		},
		[]string{"path"},
	)

	// CommitAttempts records how many attempts each commit needed.
	CommitAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statuslog_commit_attempts",
			Help:    "Read-mutate-write attempts per commit",
			Buckets: []float64{1, 2, 3, 5, 8},
		},
		[]string{"path"},
	)

	// CarryForwardEntriesTotal counts entries created by carry-forward.
	CarryForwardEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statuslog_carry_forward_entries_total",
			Help: "Log entries created by carry-forward",
		},
	)
)

// HTTP metrics, updated by the API middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statuslog_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statuslog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
