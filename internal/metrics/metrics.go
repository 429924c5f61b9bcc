// Package metrics exposes Prometheus counters for ingestion and answering.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records pipeline events into its own registry. It implements pipeline.Recorder.
type Metrics struct {
	registry       *prometheus.Registry
	chunksIngested prometheus.Counter
	answersTotal   *prometheus.CounterVec
	answerDuration prometheus.Histogram
	uploadsTotal   *prometheus.CounterVec
}

// New creates a registry with the pipeline metrics and the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chunksIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragbench_chunks_ingested_total",
			Help: "Total number of chunks embedded and indexed",
		}),
		answersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragbench_answers_total",
				Help: "Total number of answers served by provider and degraded flag",
			},
			[]string{"provider", "degraded"},
		),
		answerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ragbench_answer_duration_seconds",
			Help:    "Time to retrieve, rerank and generate an answer",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
		}),
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ragbench_uploads_total",
				Help: "Total number of uploaded files by source type and outcome",
			},
			[]string{"source_type", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.chunksIngested,
		m.answersTotal,
		m.answerDuration,
		m.uploadsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ChunksIngested adds n to the ingested chunk counter.
func (m *Metrics) ChunksIngested(n int) {
	m.chunksIngested.Add(float64(n))
}

// AnswerServed counts one answer and observes its latency.
func (m *Metrics) AnswerServed(provider string, degraded bool, elapsed time.Duration) {
	m.answersTotal.WithLabelValues(provider, strconv.FormatBool(degraded)).Inc()
	m.answerDuration.Observe(elapsed.Seconds())
}

// FileUploaded counts one uploaded file. An empty sourceType is reported as "unknown".
func (m *Metrics) FileUploaded(sourceType string, ok bool) {
	if sourceType == "" {
		sourceType = "unknown"
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.uploadsTotal.WithLabelValues(sourceType, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
