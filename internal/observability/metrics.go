package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ThunkPhases counts async action lifecycle phases by action and phase.
	ThunkPhases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovrr_thunk_phase_total",
		Help: "Total async action lifecycle phases by action and phase",
	}, []string{"action", "phase"})

	// ThunkConditionSkips counts async actions suppressed by their precondition gate.
	ThunkConditionSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovrr_thunk_condition_skips_total",
		Help: "Total async actions skipped by the precondition gate",
	}, []string{"action"})

	// ThunkLatency records the duration of the remote call of an async action.
	ThunkLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discovrr_thunk_latency_seconds",
		Help:    "Remote call latency of async actions in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// OptimisticRollbacks counts optimistic updates reverted after a failed remote call.
	OptimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovrr_optimistic_rollbacks_total",
		Help: "Total optimistic updates rolled back",
	}, []string{"kind"})

	// StoreResets counts global reset broadcasts.
	StoreResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovrr_store_resets_total",
		Help: "Total global store resets by whether the push token was reset",
	}, []string{"reset_push_token"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovrr_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PushNotificationsReceived counts push payloads delivered to the store.
	PushNotificationsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovrr_push_notifications_received_total",
		Help: "Total push notifications received",
	})
)
