// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Operations counts state-changing household operations by name.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearthtab_operations_total",
		Help: "State-changing household operations applied to the document.",
	}, []string{"op"})

	// Settlements counts bills transitioning to fully paid.
	Settlements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthtab_bill_settlements_total",
		Help: "Bills that reached full settlement.",
	})

	// VersionConflicts counts optimistic-concurrency retries on the
	// household document.
	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthtab_document_version_conflicts_total",
		Help: "Document saves rejected by the version check and retried.",
	})
)
