// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors of the aggregator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/paper-aggregator/internal/apperr"
)

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_aggregator_source_fetch_total",
			Help: "Source API fetches by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_aggregator_source_fetch_seconds",
			Help:    "Duration of source API fetches, retries and throttling included.",
			Buckets: []float64{0.1, 0.5, 1, 3, 5, 10, 30, 60},
		},
		[]string{"source"},
	)
	duplicatesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paper_aggregator_duplicates_removed_total",
			Help: "Records folded into another record by title aggregation.",
		},
	)
	papersReturned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paper_aggregator_papers_returned_total",
			Help: "Papers returned to callers after aggregation and limiting.",
		},
	)
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_aggregator_requests_total",
			Help: "Orchestrator requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration, duplicatesRemoved, papersReturned, requestsTotal)
}

// Outcome labels an error for the outcome dimension: "ok" for nil, the
// error kind for classified errors, "error" otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}

// ObserveFetch records one source fetch.
func ObserveFetch(source string, err error, d time.Duration) {
	fetchTotal.WithLabelValues(source, Outcome(err)).Inc()
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveAggregation records the result of one aggregation run.
func ObserveAggregation(duplicates, returned int) {
	duplicatesRemoved.Add(float64(duplicates))
	papersReturned.Add(float64(returned))
}

// ObserveRequest records one orchestrator request.
func ObserveRequest(operation string, err error) {
	requestsTotal.WithLabelValues(operation, Outcome(err)).Inc()
}
