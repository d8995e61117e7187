package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	PullCount         prometheus.Counter
	URLsExtracted     prometheus.Counter
	EmailsExtracted   prometheus.Counter
	ReplySuccesses    prometheus.Counter
	ReplyFailures     prometheus.Counter
	ProcessingTime    prometheus.Histogram
	ProcessedMessages prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		PullCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_extractor_pull_count",
			Help: "Total number of mailbox poll cycles",
		}),
		URLsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_extractor_urls_extracted_total",
			Help: "Total number of unique URLs extracted from messages",
		}),
		EmailsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_extractor_emails_extracted_total",
			Help: "Total number of unique email addresses extracted from messages",
		}),
		ReplySuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_extractor_reply_successes",
			Help: "Total number of successfully sent extraction reports",
		}),
		ReplyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_extractor_reply_failures",
			Help: "Total number of failed extraction report sends",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mail_extractor_processing_duration_seconds",
			Help:    "Time spent processing a poll cycle",
			Buckets: prometheus.DefBuckets,
		}),
		ProcessedMessages: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_extractor_processed_messages",
			Help: "Number of messages answered so far",
		}),
	}
}
