package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Alert engine metrics
	AlertsSent       prometheus.Counter
	AlertsFailed     *prometheus.CounterVec
	AlertsSuppressed prometheus.Counter
	AlertsResolved   prometheus.Counter

	// Daily digest metrics
	DigestRuns    *prometheus.CounterVec
	DigestSkipped prometheus.Counter

	// Mailer metrics
	MailSendLatency prometheus.Histogram
	MailSendErrors  *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AlertsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Total number of low-stock alert emails sent",
		}),
		AlertsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_failed_total",
			Help:      "Total number of alerts that could not be delivered",
		}, []string{"reason"}),
		AlertsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Total number of alerts suppressed because an open alert already existed",
		}),
		AlertsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_resolved_total",
			Help:      "Total number of alerts resolved by stock recovery",
		}),
		DigestRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_runs_total",
			Help:      "Total number of daily digest runs by outcome",
		}, []string{"outcome"}),
		DigestSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_skipped_total",
			Help:      "Total number of digest invocations skipped because today's record exists",
		}),
		MailSendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mail_send_duration_seconds",
			Help:      "Time spent delivering mail over SMTP",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		MailSendErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_send_errors_total",
			Help:      "Total number of SMTP delivery failures by category",
		}, []string{"category"}),
	}
}
