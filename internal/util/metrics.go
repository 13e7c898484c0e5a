package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSelfAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_self_assigned_total",
		Help: "Total number of orders florists claimed for themselves",
	})

	OrdersAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_assigned_total",
		Help: "Total number of admin-directed order assignments",
	})

	OrdersUnassignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_unassigned_total",
		Help: "Total number of orders returned to pending",
	})

	OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Total number of completed orders",
	})

	AssignmentConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_conflicts_total",
		Help: "Total number of rejected assignment attempts",
	}, []string{"reason"})

	CompletionMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_completion_minutes",
		Help:    "Minutes between assignment and completion",
		Buckets: []float64{5, 10, 15, 30, 45, 60, 90, 120, 240},
	})

	LabelsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labels_upserted_total",
		Help: "Total number of label definitions created or replaced",
	})

	WorklistRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worklist_request_duration_seconds",
		Help:    "Latency of building the ranked worklist",
		Buckets: prometheus.DefBuckets,
	})

	CompletionEventsProjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "completion_events_projected_total",
		Help: "Total number of completion events projected into the daily counters",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
