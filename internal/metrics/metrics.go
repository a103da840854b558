// Package metrics exposes the Prometheus instruments for the mail
// processing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every instrument the service registers. All fields are
// created and registered by New; callers never register instruments
// themselves.
type Metrics struct {
	DocumentsTotal  *prometheus.CounterVec
	LarkRequests    *prometheus.CounterVec
	ParseDuration   prometheus.Histogram
	ArchivedRecords prometheus.Counter
	WebhookRejects  *prometheus.CounterVec
}

// New creates and registers the instrument set on reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservemail",
			Name:      "documents_total",
			Help:      "Processed mail documents by outcome",
		}, []string{"result"}),
		LarkRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservemail",
			Name:      "lark_requests_total",
			Help:      "Bitable API requests by operation and status",
		}, []string{"op", "status"}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reservemail",
			Name:      "parse_duration_seconds",
			Help:      "Time spent extracting and validating one document",
			Buckets:   prometheus.DefBuckets,
		}),
		ArchivedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reservemail",
			Name:      "archived_records_total",
			Help:      "Records written to the local archive",
		}),
		WebhookRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reservemail",
			Name:      "webhook_rejects_total",
			Help:      "Webhook deliveries rejected before parsing",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.DocumentsTotal, m.LarkRequests, m.ParseDuration,
		m.ArchivedRecords, m.WebhookRejects,
	)
	return m
}

// Outcome labels for DocumentsTotal.
const (
	ResultStored    = "stored"
	ResultRejected  = "rejected"
	ResultDuplicate = "duplicate"
	ResultError     = "error"
)
