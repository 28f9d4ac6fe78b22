// Package metrics exposes Prometheus metrics of the server.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction and guardian outcomes
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultDisabled = "disabled"
	ResultDenied   = "denied"
)

// Metrics provides observability for the HTTP API and the policy domain.
// All methods are safe on a nil receiver.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	PoliciesCreated  prometheus.Counter
	PoliciesRenewed  prometheus.Counter
	DemoSeeded       prometheus.Counter
	Extractions      *prometheus.CounterVec
	GuardianResolves *prometheus.CounterVec
	SharesCreated    prometheus.Counter
	RateLimited      *prometheus.CounterVec
}

// New creates metrics registered in reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wealthvault_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wealthvault_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"method", "route"}),
		PoliciesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthvault_policies_created_total",
			Help: "Total number of policy records created by owners",
		}),
		PoliciesRenewed: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthvault_policies_renewed_total",
			Help: "Total number of recorded premium renewals",
		}),
		DemoSeeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthvault_demo_seeded_total",
			Help: "Total number of owners seeded with demonstration records",
		}),
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wealthvault_extractions_total",
			Help: "Document extraction attempts by result",
		}, []string{"result"}),
		GuardianResolves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wealthvault_guardian_resolves_total",
			Help: "Guardian link resolutions by result",
		}, []string{"result"}),
		SharesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wealthvault_guardian_shares_created_total",
			Help: "Total number of guardian shares issued",
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wealthvault_rate_limited_total",
			Help: "Requests rejected by the rate limiter by path",
		}, []string{"path"}),
	}
}

// IncrementPoliciesCreated records created policy records
func (m *Metrics) IncrementPoliciesCreated() {
	if m != nil {
		m.PoliciesCreated.Inc()
	}
}

// IncrementPoliciesRenewed records a renewal
func (m *Metrics) IncrementPoliciesRenewed() {
	if m != nil {
		m.PoliciesRenewed.Inc()
	}
}

// IncrementDemoSeeded records a demo portfolio seed
func (m *Metrics) IncrementDemoSeeded() {
	if m != nil {
		m.DemoSeeded.Inc()
	}
}

// IncrementSharesCreated records an issued guardian share
func (m *Metrics) IncrementSharesCreated() {
	if m != nil {
		m.SharesCreated.Inc()
	}
}

// ObserveExtraction records an extraction outcome
func (m *Metrics) ObserveExtraction(result string) {
	if m != nil {
		m.Extractions.WithLabelValues(result).Inc()
	}
}

// ObserveGuardianResolve records a guardian link resolution outcome
func (m *Metrics) ObserveGuardianResolve(result string) {
	if m != nil {
		m.GuardianResolves.WithLabelValues(result).Inc()
	}
}

// ObserveRateLimited records a rejected public request. Suitable as middleware.RateLimiter.OnReject.
func (m *Metrics) ObserveRateLimited(r *http.Request) {
	if m == nil {
		return
	}
	// Публичные пути без параметров, кроме salt/{username}
	path := r.URL.Path
	if strings.HasPrefix(path, "/api/v1/auth/salt/") {
		path = "/api/v1/auth/salt/{username}"
	}
	m.RateLimited.WithLabelValues(path).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration labelled by the chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// Шаблон маршрута вместо пути: ключи документов и id не раздувают кардинальность
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
