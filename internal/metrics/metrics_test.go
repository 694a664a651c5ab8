package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("insight")

	c.LLMAttempt(OutcomeFailure)
	c.LLMAttempt(OutcomeFailure)
	c.LLMAttempt(OutcomeSuccess)
	c.LLMFallback()
	c.MemoryWrite(OutcomeDropped)
	c.ChatAnswer(false)
	c.ObserveAnalysis(OutcomeSuccess, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.llmAttemptsTotal.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmAttemptsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmFallbacksTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.memoryWritesTotal.WithLabelValues(OutcomeDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.chatAnswersTotal.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.analysesTotal.WithLabelValues(OutcomeSuccess)))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.LLMAttempt(OutcomeSuccess)
	c.LLMFallback()
	c.MemoryWrite(OutcomeSuccess)
	c.MemorySearch(OutcomeSuccess)
	c.ChatAnswer(true)
	c.HTTPRequest("GET", "/", 200, time.Millisecond)
	c.ObserveAnalysis(OutcomeFailure, time.Second)
	assert.Nil(t, c.Registry())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("insight")
	c.HTTPRequest("POST", "/analyze", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `insight_http_requests_total{method="POST",route="/analyze",status="200"} 1`)
}
