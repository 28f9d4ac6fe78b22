package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/policies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/policies/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/policies/{id}", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementPoliciesCreated()
	m.ObserveExtraction(ResultFailed)
	m.ObserveExtraction(ResultFailed)
	m.ObserveGuardianResolve(ResultDenied)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PoliciesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Extractions.WithLabelValues(ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardianResolves.WithLabelValues(ResultDenied)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementPoliciesCreated()
		m.ObserveExtraction(ResultOK)
		_ = m.Middleware(http.NotFoundHandler())
	})
}

func TestObserveRateLimited_CollapsesUsername(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRateLimited(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/asha", nil))
	m.ObserveRateLimited(httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/ravi", nil))
	m.ObserveRateLimited(httptest.NewRequest(http.MethodGet, "/api/v1/guardian?token=x", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/v1/auth/salt/{username}")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/v1/guardian")))
}
