package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "copa"

// Metrics counts pipeline outcomes.
type Metrics struct {
	emails    *prometheus.CounterVec
	failures  prometheus.Counter
	geocodes  *prometheus.CounterVec
	duration  prometheus.Histogram
	purged    prometheus.Counter
	purgeErrs prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "emails_processed_total",
			Help:      "Emails processed, by outcome.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "email_failures_total",
			Help:      "Emails that failed to process.",
		}),
		geocodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "geocode_lookups_total",
			Help:      "Address enrichment attempts, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "email_process_seconds",
			Help:      "Time spent processing one email.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attachments_purged_total",
			Help:      "Attachment blobs deleted by the retention purge.",
		}),
		purgeErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attachment_purge_errors_total",
			Help:      "Attachment blobs the retention purge failed to delete.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.emails, m.failures, m.geocodes, m.duration, m.purged, m.purgeErrs)
	}
	return m
}
