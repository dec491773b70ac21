// Package metrics exposes Prometheus counters for the panel.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Entity kinds recorded by RecordCreated.
const (
	EntityChannel = "channel"
	EntityCommand = "command"
	EntityNote    = "note"
	EntityBan     = "ban"
)

type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	entitiesCreatedTotal *prometheus.CounterVec
	reportsTotal         *prometheus.CounterVec
	bansDeactivatedTotal prometheus.Counter
}

// NewCollector registers every metric on its own registry, so several
// collectors can coexist in one process.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modpanel_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modpanel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		entitiesCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modpanel_entities_created_total",
			Help: "Channels, commands, notes and bans created",
		}, []string{"entity"}),

		reportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modpanel_reports_total",
			Help: "PDF reports requested, by outcome",
		}, []string{"outcome"}),

		bansDeactivatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "modpanel_bans_deactivated_total",
			Help: "Bans deactivated by hand",
		}),
	}
}

func (c *Collector) RecordRequest(method, route string, status int, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) RecordCreated(entity string) {
	c.entitiesCreatedTotal.WithLabelValues(entity).Inc()
}

// RecordReport counts a report request; outcome is "ok", "empty" or "error".
func (c *Collector) RecordReport(outcome string) {
	c.reportsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordDeactivated(n int64) {
	c.bansDeactivatedTotal.Add(float64(n))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
