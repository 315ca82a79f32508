// Package metrics defines and registers the custom Prometheus metrics for the
// taskhub API. Metric names, labels and help strings live here and nowhere else.
//
// All metrics register with the default registry on package init (promauto);
// HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskhub"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration outcomes.
// Labels:
//   - operation: "login" or "register"
//   - result: "success", "invalid_credentials", "password_mismatch", "conflict", "bad_activation_code"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// GuardRejectionsTotal counts requests turned away by the access guard.
// Label:
//   - reason: "missing_header", "malformed_header", "invalid_token", "revoked", "forbidden"
var GuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Total number of protected requests rejected by the access guard.",
	},
	[]string{"reason"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks by initial status.
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by initial status.",
	},
	[]string{"status"},
)

// TaskStatusTransitionsTotal counts status changes.
var TaskStatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_transitions_total",
		Help:      "Total number of task status changes, by source and target status.",
	},
	[]string{"from", "to"},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// ActivityQueueDepth tracks the entries waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityWrittenTotal counts activity entries by write result.
// Label:
//   - result: "ok", "error" or "dropped" (shard full)
var ActivityWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_written_total",
		Help:      "Total number of task activity entries handled by the dispatcher, by result.",
	},
	[]string{"result"},
)

// ActivityWriteDuration measures a single audit insert.
var ActivityWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_write_duration_seconds",
		Help:      "Duration of a single task activity insert.",
		Buckets:   prometheus.DefBuckets,
	},
)
