// Package metrics defines the Prometheus instruments for the brand
// visibility pipeline. Instruments are registered on the default registry
// and served through the /metrics endpoint in the API mux.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics groups the pipeline-level instruments.
type BusinessMetrics struct {
	RunsStartedTotal  prometheus.Counter
	RunsFinishedTotal *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	QueueWaitSeconds  *prometheus.HistogramVec
}

// New registers and returns the business metrics under the given namespace.
// Registering the same namespace twice panics, so each process creates this
// once at startup.
func New(namespace string) *BusinessMetrics {
	return &BusinessMetrics{
		RunsStartedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Analysis runs created.",
		}),
		RunsFinishedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_finished_total",
			Help:      "Analysis runs finished, by terminal status.",
		}, []string{"status"}),
		StepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Duration of each workflow step.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"step", "status"}),
		QueueWaitSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_queue_wait_seconds",
			Help:      "Time tasks spent queued before a worker picked them up.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"task_type"}),
	}
}

// ObserveStep records one workflow step execution.
func (m *BusinessMetrics) ObserveStep(step, status string, d time.Duration) {
	m.StepDuration.WithLabelValues(step, status).Observe(d.Seconds())
}

// ObserveQueueWait records how long a task waited in its queue.
func (m *BusinessMetrics) ObserveQueueWait(taskType string, d time.Duration) {
	if d > 0 {
		m.QueueWaitSeconds.WithLabelValues(taskType).Observe(d.Seconds())
	}
}
