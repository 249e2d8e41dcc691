// Package metrics holds the Prometheus instruments for content builds and
// contact relays.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contact outcomes used as the "outcome" label.
const (
	OutcomeSent        = "sent"
	OutcomeInvalid     = "invalid"
	OutcomeMalformed   = "malformed"
	OutcomeUpstreamErr = "upstream_error"
)

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Metrics struct {
	registry *prometheus.Registry

	ContactSubmissions *prometheus.CounterVec
	UpstreamDuration   prometheus.Histogram
	BuildErrors        *prometheus.CounterVec
	Entries            *prometheus.GaugeVec
}

// New creates and registers every instrument plus the Go runtime and process
// collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ContactSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_submissions_total",
				Help: "Contact relay requests by outcome",
			},
			[]string{"outcome"},
		),
		UpstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contact_upstream_duration_seconds",
				Help:    "Latency of calls to the email API",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 9),
			},
		),
		BuildErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_build_errors_total",
				Help: "Documents rejected by collection validation",
			},
			[]string{"collection"},
		),
		Entries: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "content_entries",
				Help: "Valid entries per collection in the current snapshot",
			},
			[]string{"collection"},
		),
	}
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBuild records the totals of one collection build.
func (m *Metrics) ObserveBuild(collection string, entries, failures int) {
	m.Entries.WithLabelValues(collection).Set(float64(entries))
	if failures > 0 {
		m.BuildErrors.WithLabelValues(collection).Add(float64(failures))
	}
}

// ObserveContact counts one relay request.
func (m *Metrics) ObserveContact(outcome string) {
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one email API call.
func (m *Metrics) ObserveUpstream(d time.Duration) {
	m.UpstreamDuration.Observe(d.Seconds())
}
