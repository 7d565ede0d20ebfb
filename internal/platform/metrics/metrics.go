// Package metrics expone los contadores del servicio en formato Prometheus.
// Un *Metrics nil es válido: todos los métodos son no-op.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	recordOps   *prometheus.CounterVec
	accessCodes *prometheus.CounterVec
}

// New usa un registry propio (no el global) para poder crear varios routers en tests.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetclinic",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		recordOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Name:      "record_operations_total",
			Help:      "Medical record create/update outcomes.",
		}, []string{"op", "outcome"}),
		accessCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Name:      "access_code_events_total",
			Help:      "Diagnosis access code issuance and validation outcomes.",
		}, []string{"event", "outcome"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.recordOps, m.accessCodes,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordOp: op = create|update, outcome = kind del error o "ok".
func (m *Metrics) RecordOp(op, outcome string) {
	if m == nil {
		return
	}
	m.recordOps.WithLabelValues(op, outcome).Inc()
}

// AccessCode: event = issue|validate.
func (m *Metrics) AccessCode(event, outcome string) {
	if m == nil {
		return
	}
	m.accessCodes.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry para tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
