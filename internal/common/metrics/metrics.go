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

	RerankFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rerank_fallbacks_total",
			Help: "Recommendation requests served coarse-only because re-ranking failed",
		},
		[]string{"error_code"},
	)

	ShortlistSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coarse_shortlist_size",
			Help:    "Number of jobs surviving the coarse filter per request",
			Buckets: prometheus.LinearBuckets(0, 5, 9),
		},
	)
)
