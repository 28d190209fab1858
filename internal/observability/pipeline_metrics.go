package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	assistantOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizlens_assistant_outcomes_total",
			Help: "Total number of answered questions by failing stage and result.",
		},
		[]string{"stage", "result"},
	)
	assistantCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizlens_assistant_cache_lookups_total",
			Help: "Outcome cache lookups by result.",
		},
		[]string{"result"},
	)
	generationLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bizlens_generation_latency_ms",
			Help:    "Text generator round-trip latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
		},
	)
	executionLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bizlens_execution_latency_ms",
			Help:    "Warehouse execution latency in milliseconds, including join repair retries.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
	joinRepairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizlens_join_repairs_total",
			Help: "Join repair retries by repair kind and retry result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		assistantOutcomesTotal,
		assistantCacheLookupsTotal,
		generationLatencyMs,
		executionLatencyMs,
		joinRepairsTotal,
	)
}

// ObserveOutcome records a finished question. Stage is empty for successes.
func ObserveOutcome(stage string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	if stage == "" {
		stage = "none"
	}
	assistantOutcomesTotal.WithLabelValues(stage, result).Inc()
}

func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	assistantCacheLookupsTotal.WithLabelValues(result).Inc()
}

func ObserveGenerationLatency(elapsed time.Duration) {
	generationLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveExecutionLatency(elapsed time.Duration) {
	executionLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveJoinRepair(kind string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	joinRepairsTotal.WithLabelValues(kind, result).Inc()
}
