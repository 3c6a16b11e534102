// Package observability provides Prometheus metric collectors for the
// moderation core.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts terminal moderation decisions by outcome.
	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relove_moderation_decisions_total",
		Help: "Total number of terminal moderation decisions by outcome",
	}, []string{"decision"})

	// BulkOutcomesTotal counts per-item outcomes of bulk moderation calls.
	BulkOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relove_moderation_bulk_outcomes_total",
		Help: "Per-item outcomes of bulk moderation operations",
	}, []string{"operation", "status"})

	// ResubmissionsTotal counts seller resubmissions of rejected listings.
	ResubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relove_listing_resubmissions_total",
		Help: "Total number of rejected listings resubmitted by sellers",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relove_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
