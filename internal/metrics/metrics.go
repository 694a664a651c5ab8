// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDropped = "dropped"
)

// Collector holds the registry and every metric the service reports.
type Collector struct {
	registry *prometheus.Registry

	analysesTotal       *prometheus.CounterVec
	analysisDuration    prometheus.Histogram
	llmAttemptsTotal    *prometheus.CounterVec
	llmFallbacksTotal   prometheus.Counter
	memoryWritesTotal   *prometheus.CounterVec
	memorySearchesTotal *prometheus.CounterVec
	chatAnswersTotal    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector registers all metrics under namespace on a private registry.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses handled, by outcome.",
		}, []string{"outcome"}),
		analysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency, excluding the background memory write.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		llmAttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_attempts_total",
			Help:      "Language model backend calls, by outcome.",
		}, []string{"outcome"}),
		llmFallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_fallbacks_total",
			Help:      "Analyses answered with the fallback record after malformed model output.",
		}),
		memoryWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_writes_total",
			Help:      "Memory entry writes, by outcome.",
		}, []string{"outcome"}),
		memorySearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_searches_total",
			Help:      "Memory searches, by outcome.",
		}, []string{"outcome"}),
		chatAnswersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_answers_total",
			Help:      "Chat answers, by whether any memory grounded them.",
		}, []string{"grounded"}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one analysis.
func (c *Collector) ObserveAnalysis(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.analysesTotal.WithLabelValues(outcome).Inc()
	c.analysisDuration.Observe(d.Seconds())
}

// LLMAttempt records one backend call.
func (c *Collector) LLMAttempt(outcome string) {
	if c == nil {
		return
	}
	c.llmAttemptsTotal.WithLabelValues(outcome).Inc()
}

// LLMFallback records one fallback record substitution.
func (c *Collector) LLMFallback() {
	if c == nil {
		return
	}
	c.llmFallbacksTotal.Inc()
}

// MemoryWrite records one memory write.
func (c *Collector) MemoryWrite(outcome string) {
	if c == nil {
		return
	}
	c.memoryWritesTotal.WithLabelValues(outcome).Inc()
}

// MemorySearch records one memory search.
func (c *Collector) MemorySearch(outcome string) {
	if c == nil {
		return
	}
	c.memorySearchesTotal.WithLabelValues(outcome).Inc()
}

// ChatAnswer records one chat answer.
func (c *Collector) ChatAnswer(grounded bool) {
	if c == nil {
		return
	}
	c.chatAnswersTotal.WithLabelValues(strconv.FormatBool(grounded)).Inc()
}

// HTTPRequest records one served request.
func (c *Collector) HTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
