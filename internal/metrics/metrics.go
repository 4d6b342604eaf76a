// Package metrics exposes Prometheus instrumentation for the triage
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_emails_processed_total",
			Help: "Emails that completed full analysis",
		},
		[]string{"priority", "sentiment"},
	)

	AnalysisFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_analysis_failures_total",
			Help: "Analyses that degraded to the default record",
		},
	)

	SentimentMethod = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_sentiment_method_total",
			Help: "Which tier of the sentiment chain produced the result",
		},
		[]string{"method"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "triage_queue_depth",
			Help: "Emails currently waiting in the priority queue",
		},
	)

	QueueRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_queue_rejections_total",
			Help: "Admissions rejected because the queue was full",
		},
	)

	ResponseMethod = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_response_method_total",
			Help: "How each draft reply was produced",
		},
		[]string{"method"},
	)

	ResponseQuality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_response_quality",
			Help:    "Overall quality score of generated replies",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		},
	)

	GeneratorLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_generator_latency_seconds",
			Help:    "Latency of external AI calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"service", "status"},
	)
)

// ObserveGeneratorCall records one external AI call.
func ObserveGeneratorCall(service string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GeneratorLatency.WithLabelValues(service, status).Observe(duration.Seconds())
}
