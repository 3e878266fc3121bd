// Package metrics holds the prometheus collectors of the dispense service.
// Every Metrics value owns its registry, so tests and multiple servers in one
// process never collide on registration.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/dispense/dosing"
)

const namespace = "dispense"

// Outcome labels for schedule generation.
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeOverflow    = "overflow"
	OutcomeError       = "error"
)

var durationBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}

// Metrics groups the collectors.
type Metrics struct {
	registry *prometheus.Registry

	SchedulesTotal      *prometheus.CounterVec
	PeriodsPerSchedule  *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers every collector, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SchedulesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Schedule generation attempts by mode and outcome.",
		}, []string{"mode", "outcome"}),
		PeriodsPerSchedule: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_periods",
			Help:      "Number of dose periods in generated schedules.",
			Buckets:   prometheus.LinearBuckets(1, 5, 12),
		}, []string{"mode"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.SchedulesTotal,
		m.PeriodsPerSchedule,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveSchedule records one Generate call.
func (m *Metrics) ObserveSchedule(mode dosing.Mode, s *dosing.Schedule, err error) {
	outcome := Outcome(err)
	m.SchedulesTotal.WithLabelValues(string(mode), outcome).Inc()
	if err == nil && s != nil {
		m.PeriodsPerSchedule.WithLabelValues(string(mode)).Observe(float64(len(s.Periods)))
	}
}

// Outcome classifies a Generate error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, dosing.ErrSchedulingOverflow):
		return OutcomeOverflow
	case dosing.IsClientError(err):
		return OutcomeClientError
	default:
		return OutcomeError
	}
}

// Middleware records request count and latency. Routes are labelled by
// their chi pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
