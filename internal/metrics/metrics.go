// Package metrics exports router activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scubot/tagbot/internal/dispatch"
)

// Collector implements dispatch.Observer on its own Prometheus registry.
type Collector struct {
	registry   *prometheus.Registry
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	routes     prometheus.Gauge
}

var _ dispatch.Observer = (*Collector)(nil)

// NewCollector creates and registers the tagbot metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagbot",
			Name:      "dispatch_total",
			Help:      "Commands dispatched, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagbot",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent tokenizing and matching a command.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"outcome"}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tagbot",
			Name:      "routes",
			Help:      "Registered routes.",
		}),
	}
	c.registry.MustRegister(c.dispatches, c.duration, c.routes)
	return c
}

// ObserveDispatch records one dispatch.
func (c *Collector) ObserveDispatch(outcome dispatch.Outcome, elapsed time.Duration) {
	c.dispatches.WithLabelValues(string(outcome)).Inc()
	c.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// ObserveRules records the registered route count.
func (c *Collector) ObserveRules(count int) {
	c.routes.Set(float64(count))
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
