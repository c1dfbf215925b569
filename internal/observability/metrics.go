package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for the coordination runtime:
// event bus traffic, tool-call execution, orchestrator phase timing,
// LLM request performance, and Copilot token-exchange activity.
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	metrics.EventsPublished.WithLabelValues("task.completed").Inc()
//	defer metrics.LLMRequestDuration.WithLabelValues("anthropic", "claude-3-opus").Observe(time.Since(start).Seconds())
type Metrics struct {
	// EventsPublished counts events published to the bus.
	// Labels: event_type
	EventsPublished *prometheus.CounterVec

	// EventsDelivered counts events delivered to a subscriber.
	// Labels: event_type
	EventsDelivered *prometheus.CounterVec

	// EventsDropped counts events dropped because a subscriber's
	// buffered channel was full.
	// Labels: event_type
	EventsDropped *prometheus.CounterVec

	// ToolCallsExecuted counts tool-call executions.
	// Labels: tool_name, status (success|error)
	ToolCallsExecuted *prometheus.CounterVec

	// ToolCallDuration measures tool-call execution time in seconds.
	// Labels: tool_name
	ToolCallDuration *prometheus.HistogramVec

	// ToolCallParseFailures counts text responses from which no valid
	// tool call could be extracted.
	ToolCallParseFailures prometheus.Counter

	// OrchestratorPhaseDuration measures time spent in each
	// orchestrator phase.
	// Labels: phase (plan|dispatch|craft|verify|done)
	OrchestratorPhaseDuration *prometheus.HistogramVec

	// OrchestratorRuns counts orchestrator runs by outcome.
	// Labels: outcome (success|no_tasks|failure|cancelled)
	OrchestratorRuns *prometheus.CounterVec

	// AgentsActive gauges agents currently in a non-terminal state.
	// Labels: role (routa|crafter|gate)
	AgentsActive *prometheus.GaugeVec

	// LLMRequestDuration measures LLM API call latency in seconds.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts LLM requests by provider, model, status.
	LLMRequestCounter *prometheus.CounterVec

	// LLMTokensUsed tracks token consumption.
	// Labels: provider, model, type (prompt|completion)
	LLMTokensUsed *prometheus.CounterVec

	// CopilotTokenExchanges counts GitHub Copilot OAuth token
	// exchanges, distinguishing fresh exchanges from cache hits.
	// Labels: outcome (exchanged|cached|error)
	CopilotTokenExchanges *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics with the
// default registry. Call once at process startup.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_events_published_total",
				Help: "Total number of events published to the bus by event type",
			},
			[]string{"event_type"},
		),
		EventsDelivered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_events_delivered_total",
				Help: "Total number of events delivered to subscribers by event type",
			},
			[]string{"event_type"},
		),
		EventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_events_dropped_total",
				Help: "Total number of events dropped due to a full subscriber buffer",
			},
			[]string{"event_type"},
		),
		ToolCallsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_tool_calls_total",
				Help: "Total number of tool calls executed by tool name and status",
			},
			[]string{"tool_name", "status"},
		),
		ToolCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "routa_tool_call_duration_seconds",
				Help:    "Duration of tool call execution in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"tool_name"},
		),
		ToolCallParseFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "routa_tool_call_parse_failures_total",
				Help: "Total number of agent responses with no extractable tool call",
			},
		),
		OrchestratorPhaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "routa_orchestrator_phase_duration_seconds",
				Help:    "Duration of each orchestrator phase in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"phase"},
		),
		OrchestratorRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_orchestrator_runs_total",
				Help: "Total number of orchestrator runs by outcome",
			},
			[]string{"outcome"},
		),
		AgentsActive: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "routa_agents_active",
				Help: "Current number of agents in a non-terminal state by role",
			},
			[]string{"role"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "routa_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_llm_requests_total",
				Help: "Total number of LLM requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),
		LLMTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_llm_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),
		CopilotTokenExchanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routa_copilot_token_exchanges_total",
				Help: "Total number of GitHub Copilot OAuth token exchanges by outcome",
			},
			[]string{"outcome"},
		),
	}
}
