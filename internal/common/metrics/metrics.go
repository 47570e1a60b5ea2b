// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CandidateEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_evaluations_total",
			Help: "Evaluations scored, by tool and verdict",
		},
		[]string{"tool", "verdict"},
	)

	// Viability scores live in [-1, 12] and portability scores in [0, 100],
	// so each tool gets its own buckets.
	CandidateScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "candidate_score",
			Help:    "Distribution of composite candidate scores",
			Buckets: []float64{0, 2, 4, 6, 8, 10, 12, 25, 40, 55, 70, 85, 100},
		},
		[]string{"tool"},
	)

	PersistenceAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_persistence_attempts_total",
			Help: "Remote save attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// JobTimer tracks one job from start to completion or failure.
type JobTimer struct {
	taskType string
	start    time.Time
}

func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (t *JobTimer) Completed() {
	t.finish()
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
}

func (t *JobTimer) Failed(errorCode string) {
	t.finish()
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

func (t *JobTimer) finish() {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
}

// RecordEvaluation counts one scored evaluation.
func RecordEvaluation(tool, verdict string, score int) {
	CandidateEvaluations.WithLabelValues(tool, verdict).Inc()
	CandidateScore.WithLabelValues(tool).Observe(float64(score))
}
