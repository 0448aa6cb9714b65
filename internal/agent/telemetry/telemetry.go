package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/webpilot-ai/webpilot/config"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webpilot_requests_total",
		Help: "Orchestration runs by terminal status.",
	}, []string{"status"})

	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webpilot_phase_duration_seconds",
		Help:    "Duration of each orchestration phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	toolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webpilot_tool_executions_total",
		Help: "Plan step executions by tool and status.",
	}, []string{"tool", "status"})

	completionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webpilot_completion_requests_total",
		Help: "Chat-completion calls by outcome.",
	}, []string{"status"})

	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webpilot_fallbacks_total",
		Help: "Single-shot recovery attempts after a phase failure.",
	})
)

// Telemetry provides monitoring for the orchestrator and tools.
type Telemetry struct {
	config  config.TelemetryConfig
	logger  *log.Logger
	metrics *Metrics
}

// Metrics holds in-memory aggregate metrics.
type Metrics struct {
	mu sync.RWMutex

	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	RecoveredRequests  int64
	TotalProcessing    time.Duration

	ToolExecutions map[string]int64
	ToolFailures   map[string]int64

	CompletionCalls    int64
	CompletionFailures int64
}

// MetricsSnapshot is a copyable view of Metrics.
type MetricsSnapshot struct {
	TotalRequests         int64
	SuccessfulRequests    int64
	FailedRequests        int64
	RecoveredRequests     int64
	AverageProcessingTime time.Duration
	ToolExecutions        map[string]int64
	ToolFailures          map[string]int64
	CompletionCalls       int64
	CompletionFailures    int64
}

// NewTelemetry creates a new telemetry instance
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			ToolExecutions: make(map[string]int64),
			ToolFailures:   make(map[string]int64),
		},
	}
}

// RecordRequest records one finished orchestration run.
func (t *Telemetry) RecordRequest(status string, duration time.Duration) {
	if !t.config.Enabled {
		return
	}
	requestsTotal.WithLabelValues(status).Inc()

	t.metrics.mu.Lock()
	defer t.metrics.mu.Unlock()
	t.metrics.TotalRequests++
	t.metrics.TotalProcessing += duration
	switch status {
	case "completed":
		t.metrics.SuccessfulRequests++
	case "recovered":
		t.metrics.RecoveredRequests++
	default:
		t.metrics.FailedRequests++
	}
}

// RecordPhase records a phase duration.
func (t *Telemetry) RecordPhase(phase string, duration time.Duration) {
	if !t.config.Enabled {
		return
	}
	phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordToolExecution records one plan step dispatch.
func (t *Telemetry) RecordToolExecution(tool, status string) {
	if !t.config.Enabled {
		return
	}
	toolExecutions.WithLabelValues(tool, status).Inc()

	t.metrics.mu.Lock()
	defer t.metrics.mu.Unlock()
	t.metrics.ToolExecutions[tool]++
	if status == "error" {
		t.metrics.ToolFailures[tool]++
	}
}

// RecordCompletion records one chat-completion call.
func (t *Telemetry) RecordCompletion(success bool) {
	if !t.config.Enabled {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	completionRequests.WithLabelValues(status).Inc()

	t.metrics.mu.Lock()
	defer t.metrics.mu.Unlock()
	t.metrics.CompletionCalls++
	if !success {
		t.metrics.CompletionFailures++
	}
}

// RecordFallback records a recovery attempt.
func (t *Telemetry) RecordFallback() {
	if !t.config.Enabled {
		return
	}
	fallbacksTotal.Inc()
}

// GetMetrics returns a snapshot of the in-memory metrics.
func (t *Telemetry) GetMetrics() MetricsSnapshot {
	t.metrics.mu.RLock()
	defer t.metrics.mu.RUnlock()

	snap := MetricsSnapshot{
		TotalRequests:      t.metrics.TotalRequests,
		SuccessfulRequests: t.metrics.SuccessfulRequests,
		FailedRequests:     t.metrics.FailedRequests,
		RecoveredRequests:  t.metrics.RecoveredRequests,
		CompletionCalls:    t.metrics.CompletionCalls,
		CompletionFailures: t.metrics.CompletionFailures,
		ToolExecutions:     make(map[string]int64, len(t.metrics.ToolExecutions)),
		ToolFailures:       make(map[string]int64, len(t.metrics.ToolFailures)),
	}
	for k, v := range t.metrics.ToolExecutions {
		snap.ToolExecutions[k] = v
	}
	for k, v := range t.metrics.ToolFailures {
		snap.ToolFailures[k] = v
	}
	if t.metrics.TotalRequests > 0 {
		snap.AverageProcessingTime = t.metrics.TotalProcessing / time.Duration(t.metrics.TotalRequests)
	}
	return snap
}
