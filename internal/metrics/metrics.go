// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	ConsensusOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tanda",
		Name:      "consensus_operations_total",
		Help:      "Transfer consensus operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	GroupOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tanda",
		Name:      "group_operations_total",
		Help:      "Group lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	SimulationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tanda",
		Name:      "simulation_duration_seconds",
		Help:      "Wall time of scenario and grid simulations.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"kind"})

	GridCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tanda",
		Name:      "grid_cache_lookups_total",
		Help:      "Grid result cache lookups by result (hit, miss).",
	}, []string{"result"})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tanda",
		Name:      "rpc_requests_total",
		Help:      "Connect RPCs by procedure and code.",
	}, []string{"procedure", "code"})
)
