// Package metrics holds the Prometheus collectors shared by services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storelink"

// Webhooks counts inbound webhook deliveries and times compliance collaborators.
type Webhooks struct {
	Deliveries          *prometheus.CounterVec
	CollaboratorSeconds *prometheus.HistogramVec
}

func NewWebhooks(reg prometheus.Registerer) *Webhooks {
	m := &Webhooks{
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhooks",
			Name:      "deliveries_total",
			Help:      "Inbound webhook deliveries by topic and outcome.",
		}, []string{"topic", "outcome"}),
		CollaboratorSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhooks",
			Name:      "collaborator_duration_seconds",
			Help:      "Time spent in compliance collaborators.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"topic", "result"}),
	}
	reg.MustRegister(m.Deliveries, m.CollaboratorSeconds)
	return m
}

func (m *Webhooks) ObserveDelivery(topic, outcome string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(topic, outcome).Inc()
}

func (m *Webhooks) ObserveCollaborator(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CollaboratorSeconds.WithLabelValues(topic, result).Observe(d.Seconds())
}

// Server records request counts and latency per route label.
type Server struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewServer(reg prometheus.Registerer) *Server {
	s := &Server{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}
	reg.MustRegister(s.requests, s.latency)
	return s
}

// Instrument wraps next and labels its samples with name.
func (s *Server) Instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.requests.WithLabelValues(name, strconv.Itoa(rec.status)).Inc()
		s.latency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
