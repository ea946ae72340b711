package fpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Pool reports to.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsRejected  prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	QueueDepth    prometheus.Gauge
	ActiveWorkers prometheus.Gauge
	JobDuration   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg skips registration.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs accepted by the pool",
		}),
		JobsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_rejected_total",
			Help:      "Total number of jobs refused by the pool",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs that finished without error",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed_total",
			Help:      "Total number of jobs that returned an error or panicked",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Current number of queued jobs",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_workers",
			Help:      "Current number of workers executing a job",
		}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Histogram of job execution time",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.JobsSubmitted,
			m.JobsRejected,
			m.JobsCompleted,
			m.JobsFailed,
			m.QueueDepth,
			m.ActiveWorkers,
			m.JobDuration,
		)
	}
	return m
}

// The pool calls these on every job, so a nil *Metrics must be a no-op.

func (m *Metrics) submitted(q *JobQueue) {
	if m == nil {
		return
	}
	m.JobsSubmitted.Inc()
	m.QueueDepth.Set(float64(q.Len()))
}

func (m *Metrics) rejected() {
	if m == nil {
		return
	}
	m.JobsRejected.Inc()
}

func (m *Metrics) started(q *JobQueue) {
	if m == nil {
		return
	}
	m.ActiveWorkers.Inc()
	m.QueueDepth.Set(float64(q.Len()))
}

func (m *Metrics) finished(elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.ActiveWorkers.Dec()
	m.JobDuration.Observe(elapsed.Seconds())
	if failed {
		m.JobsFailed.Inc()
	} else {
		m.JobsCompleted.Inc()
	}
}
