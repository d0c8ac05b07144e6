package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoleChecks counts group role capability evaluations and their outcome (allowed|denied|error).
	RoleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sock_role_checks_total",
			Help: "Total number of group role capability checks",
		},
		[]string{"capability", "result"},
	)

	// InviteTransitions counts invitation lifecycle transitions by terminal state.
	InviteTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sock_invite_transitions_total",
			Help: "Total number of invitation state transitions",
		},
		[]string{"to_status"},
	)

	// StatusResolutions counts effective status computations by winning scope (global|group|none).
	StatusResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sock_status_resolutions_total",
			Help: "Total number of effective status resolutions",
		},
		[]string{"source"},
	)

	// RealtimeClients tracks currently connected realtime subscribers.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sock_realtime_clients",
			Help: "Number of connected realtime clients",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sock_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
