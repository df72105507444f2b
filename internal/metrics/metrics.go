// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "usermgmt"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the counters. It implements user.Observer.
type Metrics struct {
	emailsSent     *prometheus.CounterVec
	profileUploads *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	registerer     prometheus.Registerer
}

// New creates the instruments and registers them on reg. Registering the
// same instruments twice on one registry reuses the existing collectors.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registerer: reg,
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Emails dispatched, by template and result.",
		}, []string{"template", "result"}),
		profileUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_uploads_total",
			Help:      "Profile picture uploads, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	var err error
	m.emailsSent, err = register(reg, m.emailsSent)
	if err != nil {
		return nil, err
	}
	m.profileUploads, err = register(reg, m.profileUploads)
	if err != nil {
		return nil, err
	}
	m.httpRequests, err = register(reg, m.httpRequests)
	if err != nil {
		return nil, err
	}
	m.httpDuration, err = register(reg, m.httpDuration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EmailSent counts one dispatch attempt of template.
func (m *Metrics) EmailSent(template string, err error) {
	m.emailsSent.WithLabelValues(template, result(err)).Inc()
}

// ProfileUpload counts one upload attempt.
func (m *Metrics) ProfileUpload(err error) {
	m.profileUploads.WithLabelValues(result(err)).Inc()
}

// Middleware records request count and latency, labeled with the chi route
// pattern so ids in paths do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RegisterPool adds pgxpool connection gauges.
func (m *Metrics) RegisterPool(pool *pgxpool.Pool) error {
	_, err := register[prometheus.Collector](m.registerer, newPoolCollector(pool))
	return err
}

// Handler serves the metrics of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
