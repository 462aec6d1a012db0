// Package observability provides Prometheus metrics and OpenTelemetry
// tracing instrumentation for the booking agent core.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// TURN METRICS
// =============================================================================

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costcare_turns_total",
			Help: "Total number of processed conversation turns",
		},
		[]string{"status"}, // status: success, error
	)

	turnDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "costcare_turn_duration_seconds",
			Help:    "Turn processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"status"},
	)
)

// =============================================================================
// HANDLER METRICS
// =============================================================================

var (
	handlerExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costcare_handler_executions_total",
			Help: "Total number of stage handler executions",
		},
		[]string{"handler", "status"}, // status: success, error
	)

	handlerDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "costcare_handler_duration_seconds",
			Help:    "Stage handler execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"handler"},
	)
)

// =============================================================================
// EXTERNAL SERVICE METRICS
// =============================================================================

var (
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costcare_llm_calls_total",
			Help: "Total number of LLM API calls",
		},
		[]string{"provider", "model", "status"}, // status: success, error
	)

	llmDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "costcare_llm_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	calendarCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costcare_calendar_calls_total",
			Help: "Total number of calendar API calls",
		},
		[]string{"operation", "status"}, // operation: freebusy, insert
	)

	knowledgeSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costcare_knowledge_searches_total",
			Help: "Total number of knowledge-base searches",
		},
		[]string{"status"},
	)
)

// =============================================================================
// RECOVERY METRICS
// =============================================================================

var recoveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "costcare_recoveries_total",
		Help: "Total number of recovery actions applied after failed turns",
	},
	[]string{"strategy"}, // strategy: sanitize, retry, restore, reset
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordTurn records turn-level metrics after a turn completes.
func RecordTurn(status string, durationMS int) {
	turnsTotal.WithLabelValues(status).Inc()
	turnDurationSeconds.WithLabelValues(status).Observe(float64(durationMS) / 1000.0)
}

// RecordHandlerExecution records stage handler metrics.
func RecordHandlerExecution(handler string, status string, durationMS int) {
	handlerExecutionsTotal.WithLabelValues(handler, status).Inc()
	handlerDurationSeconds.WithLabelValues(handler).Observe(float64(durationMS) / 1000.0)
}

// RecordLLMCall records LLM call metrics.
func RecordLLMCall(provider string, model string, status string, durationMS int) {
	llmCallsTotal.WithLabelValues(provider, model, status).Inc()
	llmDurationSeconds.WithLabelValues(provider, model).Observe(float64(durationMS) / 1000.0)
}

// RecordCalendarCall records calendar API call metrics.
func RecordCalendarCall(operation string, status string) {
	calendarCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordKnowledgeSearch records knowledge-base search metrics.
func RecordKnowledgeSearch(status string) {
	knowledgeSearchesTotal.WithLabelValues(status).Inc()
}

// RecordRecovery records an applied recovery strategy.
func RecordRecovery(strategy string) {
	recoveriesTotal.WithLabelValues(strategy).Inc()
}
