// Package services sits between the transport layer and the store. It
// resolves the caller's collections, turns client tokens into store
// preconditions, and records the outcome of every store operation.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skullkeeper_store_operations_total",
		Help: "Cumulative number of store operations by entity kind, operation and result.",
	}, []string{"kind", "op", "result"})
	storeOperationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "skullkeeper_store_operation_seconds",
		Help: "Duration of store operations by entity kind and operation.",
	}, []string{"kind", "op"})
)
