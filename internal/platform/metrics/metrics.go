package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Producer holds Prometheus metrics for the event publishing pipeline.
type Producer struct {
	Published          *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	PublishFailures    *prometheus.CounterVec
	PublishDuration    prometheus.Histogram
}

// NewProducer registers producer metrics on the default registry.
func NewProducer() *Producer {
	return &Producer{
		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spendtrail_events_published_total",
			Help: "Total number of events successfully handed to the broker",
		}, []string{"topic"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spendtrail_events_validation_failures_total",
			Help: "Total number of events rejected before any transport call",
		}, []string{"topic"}),
		PublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spendtrail_events_publish_failures_total",
			Help: "Total number of events the transport failed to accept",
		}, []string{"topic"}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "spendtrail_event_publish_duration_seconds",
			Help:    "Time spent in the transport emit call",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Ingest holds Prometheus metrics for the audit ingestion pipeline.
type Ingest struct {
	Ingested     prometheus.Counter
	Duplicates   prometheus.Counter
	DeadLettered prometheus.Counter
	StoreErrors  prometheus.Counter
}

// NewIngest registers ingestor metrics on the default registry.
func NewIngest() *Ingest {
	return &Ingest{
		Ingested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spendtrail_audit_ingested_total",
			Help: "Total number of audit records materialized from events",
		}),
		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spendtrail_audit_duplicates_total",
			Help: "Total number of re-delivered events absorbed as no-ops",
		}),
		DeadLettered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spendtrail_audit_dead_lettered_total",
			Help: "Total number of messages diverted to the dead-letter path",
		}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spendtrail_audit_store_errors_total",
			Help: "Total number of audit store write failures causing redelivery",
		}),
	}
}
