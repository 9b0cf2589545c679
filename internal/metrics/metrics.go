// Package metrics exposes Prometheus instrumentation for the ingest
// pipeline and the LPN service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Import pipeline metrics
	RowsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partstash_import_rows_parsed_total",
			Help: "Data rows parsed from uploaded BOM files",
		},
		[]string{"project"},
	)

	ComponentsFlattened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partstash_import_components_flattened_total",
			Help: "Canonical components produced by designator flattening",
		},
		[]string{"project"},
	)

	RowsAmbiguous = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partstash_import_rows_ambiguous_total",
			Help: "Rows parked for manual quantity/designator resolution",
		},
		[]string{"project"},
	)

	// LPN assignment metrics
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partstash_lpn_assignments_total",
			Help: "LPN assignment attempts by outcome",
		},
		[]string{"outcome"},
	)

	// HTTP metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partstash_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Assignment outcome labels.
const (
	OutcomeAssigned = "assigned"
	OutcomeFailed   = "failed"
)
