package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks scheduled runs of the orphan sweeper.
type CronJobMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_cron_job_duration_seconds",
		Help:    "Duration of console cron jobs in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_cron_job_success_total",
		Help: "Successful console cron job runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_cron_job_failure_total",
		Help: "Failed console cron job runs.",
	}, []string{"job"})
	lastSuccess := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "console_cron_job_last_success_timestamp_seconds",
		Help: "Unix time of the last successful console cron run.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure, lastSuccess)
	return &CronJobMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		lastSuccess: lastSuccess,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	label := normalizeLabel(job)
	c.success.WithLabelValues(label).Inc()
	if c.lastSuccess != nil {
		c.lastSuccess.WithLabelValues(label).SetToCurrentTime()
	}
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
