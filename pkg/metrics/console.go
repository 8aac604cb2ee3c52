package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ConsoleMetrics tracks the asset and record workflow.
type ConsoleMetrics struct {
	uploadDuration *prometheus.HistogramVec
	uploadBytes    *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	orphans        *prometheus.CounterVec
}

func NewConsoleMetrics(reg prometheus.Registerer) *ConsoleMetrics {
	if reg == nil {
		return &ConsoleMetrics{}
	}
	uploadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_asset_upload_duration_seconds",
		Help:    "Duration of object store uploads.",
		Buckets: prometheus.DefBuckets,
	}, []string{"namespace", "outcome"})
	uploadBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_asset_upload_bytes_total",
		Help: "Bytes written to the object store.",
	}, []string{"namespace"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_record_submissions_total",
		Help: "Record submissions by resource, mode and outcome.",
	}, []string{"resource", "mode", "outcome"})
	orphans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_orphaned_assets_total",
		Help: "Objects left behind by failed submissions.",
	}, []string{"namespace", "cleanup"})
	reg.MustRegister(uploadDuration, uploadBytes, submissions, orphans)
	return &ConsoleMetrics{
		uploadDuration: uploadDuration,
		uploadBytes:    uploadBytes,
		submissions:    submissions,
		orphans:        orphans,
	}
}

// ObserveUpload records one object store upload.
func (m *ConsoleMetrics) ObserveUpload(namespace string, size int, duration time.Duration, err error) {
	if m == nil || m.uploadDuration == nil {
		return
	}
	ns := normalizeLabel(namespace)
	m.uploadDuration.WithLabelValues(ns, outcome(err)).Observe(duration.Seconds())
	if err == nil {
		m.uploadBytes.WithLabelValues(ns).Add(float64(size))
	}
}

// IncSubmission counts one create or update attempt.
func (m *ConsoleMetrics) IncSubmission(resource, mode string, err error) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(resource), normalizeLabel(mode), outcome(err)).Inc()
}

// IncOrphan counts an object that outlived its submission; cleanup is "deleted" or "ledger".
func (m *ConsoleMetrics) IncOrphan(namespace, cleanup string) {
	if m == nil || m.orphans == nil {
		return
	}
	m.orphans.WithLabelValues(normalizeLabel(namespace), normalizeLabel(cleanup)).Inc()
}

// HTTPMetrics records request latency per route.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of console HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

func (h *HTTPMetrics) Observe(method, route string, status int, duration time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
