// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	ToolCallsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_tool_calls_total",
			Help: "Total retrieval tool calls by tool name and outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "advisory_tool_call_duration_seconds",
			Help: "Duration of retrieval tool calls in seconds",
		},
		[]string{"tool"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisory_cache_hits_total",
			Help: "Exact-match cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisory_cache_misses_total",
			Help: "Exact-match cache misses (including backend errors)",
		},
	)

	SimilarityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisory_similarity_cache_hits_total",
			Help: "Answers served from the semantic similarity index",
		},
	)
)
