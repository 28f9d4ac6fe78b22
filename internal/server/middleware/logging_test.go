package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	logger, buf := bufferLogger()
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/policies", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"HTTP request"`)
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"path":"/api/v1/policies"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"bytes_written":7`)
	assert.Contains(t, out, `"level":"INFO"`)
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{status: http.StatusOK, level: "INFO"},
		{status: http.StatusNotFound, level: "WARN"},
		{status: http.StatusInternalServerError, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logger, buf := bufferLogger()
			handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	logger, buf := bufferLogger()
	handler := chimw.RequestID(LoggingMiddleware(logger)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/policies", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestLoggingMiddleware_HidesSecrets(t *testing.T) {
	logger, buf := bufferLogger()
	handler := LoggingMiddleware(logger)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/guardian?token=secret-jwt", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc_policy.pdf", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.NotContains(t, out, "secret-jwt")
	assert.NotContains(t, out, "abc_policy.pdf")
	assert.Contains(t, out, `"path":"/api/v1/documents/***"`)
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/v1/policies/123", want: "/api/v1/policies/123"},
		{path: "/api/v1/documents/key.pdf", want: "/api/v1/documents/***"},
		{path: "/api/v1/documents/", want: "/api/v1/documents/"},
		{path: "/api/v1/extractions", want: "/api/v1/extractions"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizePath(tt.path), tt.path)
	}
}

func TestLoggingWithSkip(t *testing.T) {
	logger, buf := bufferLogger()
	handler := LoggingWithSkip(logger, []string{"/api/v1/health", "/metrics"})(okHandler())

	for _, path := range []string{"/api/v1/health", "/metrics"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Empty(t, buf.String())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/types", nil))
	assert.Contains(t, buf.String(), `"path":"/api/v1/types"`)
}
