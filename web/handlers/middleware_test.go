package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/web/handlers"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		token  string
		header string
		want   int
	}{
		{"development skips auth", "development", "secret", "", http.StatusOK},
		{"missing token", "production", "secret", "", http.StatusUnauthorized},
		{"wrong token", "production", "secret", "Bearer nope", http.StatusUnauthorized},
		{"no bearer prefix", "production", "secret", "secret", http.StatusUnauthorized},
		{"valid token", "production", "secret", "Bearer secret", http.StatusOK},
		{"no configured token", "production", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ServerConfig{SecurityMode: tt.mode, APIToken: tt.token}
			handler := handlers.RequireAuth(okHandler, cfg)

			req := httptest.NewRequest("POST", "/analyze", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestRateLimitMiddleware_AllowsNormalRate(t *testing.T) {
	handler := handlers.RateLimitMiddleware(okHandler, handlers.NewRateLimiter(10, 20))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BlocksExcessiveRate(t *testing.T) {
	handler := handlers.RateLimitMiddleware(okHandler, handlers.NewRateLimiter(1, 2))

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Contains(t, codes[2:], http.StatusTooManyRequests)
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.SecurityHeaders(okHandler).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestRequestLogger_UsesRoutePattern(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	collector := metrics.NewCollector("test")

	r := chi.NewRouter()
	r.Use(handlers.RequestLogger(zap.New(core), collector))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/items/42", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/items/{id}", fields["route"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])

	n, err := testutil.GatherAndCount(collector.Registry(), "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
