// Package metrics exposes Prometheus collectors for feed building.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ytshorts/description"
)

const namespace = "ytshorts"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	descriptions  *prometheus.CounterVec
	unmatched     prometheus.Counter
	pageFetches   *prometheus.CounterVec
	rateLimitTrip prometheus.Counter
	buildDuration *prometheus.HistogramVec
}

// New creates and registers every collector, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		descriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptions_total",
			Help:      "Descriptions reconstructed, by result (linked or unlinked).",
		}, []string{"result"}),
		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_unmatched_total",
			Help:      "Annotations whose position could not be corrected.",
		}),
		pageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "YouTube pages fetched, by page kind and cache outcome.",
		}, []string{"kind", "cache"}),
		rateLimitTrip: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_trips_total",
			Help:      "Times YouTube answered 429 and the gate was closed.",
		}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_build_seconds",
			Help:      "Time spent building a feed, by outcome.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.descriptions,
		m.unmatched,
		m.pageFetches,
		m.rateLimitTrip,
		m.buildDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveReconstruction implements description.Observer.
func (m *Metrics) ObserveReconstruction(o description.Outcome) {
	m.descriptions.WithLabelValues(o.Kind.String()).Inc()
	if o.Unmatched > 0 {
		m.unmatched.Add(float64(o.Unmatched))
	}
}

// ObservePageFetch counts a page fetch.
func (m *Metrics) ObservePageFetch(kind string, cached bool) {
	state := "miss"
	if cached {
		state = "hit"
	}
	m.pageFetches.WithLabelValues(kind, state).Inc()
}

// ObserveRateLimitTrip counts a gate trip.
func (m *Metrics) ObserveRateLimitTrip() {
	m.rateLimitTrip.Inc()
}

// ObserveBuild records how long a feed build took.
func (m *Metrics) ObserveBuild(d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.buildDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
