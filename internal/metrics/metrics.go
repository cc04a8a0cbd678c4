// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus instrumentation for the admin backend:
// calls made to the marketplace API, list-screen fetch behaviour, and
// mutations performed by operators.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "hsadmin"

// Collector owns a private registry and the metric vectors recorded by the
// gateway, list controllers and handlers. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	ListFetches     *prometheus.CounterVec
	StaleResponses  *prometheus.CounterVec
	DebounceCommits *prometheus.CounterVec
	Mutations       *prometheus.CounterVec
	ActiveScreens   prometheus.Gauge
}

// New creates a Collector with its own registry, including the Go runtime
// and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests sent to the marketplace API.",
		}, []string{"entity", "op", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Latency of marketplace API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "op"}),
		ListFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "list",
			Name:      "fetches_total",
			Help:      "List fetches issued by list screens.",
		}, []string{"entity"}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "list",
			Name:      "stale_responses_total",
			Help:      "List responses discarded because a newer fetch was issued.",
		}, []string{"entity"}),
		DebounceCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "list",
			Name:      "search_commits_total",
			Help:      "Debounced search terms committed to a query.",
		}, []string{"entity"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "admin",
			Name:      "mutations_total",
			Help:      "Create, update, toggle and delete operations by outcome.",
		}, []string{"entity", "action", "outcome"}),
		ActiveScreens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "list",
			Name:      "active_screens",
			Help:      "List screens currently held in memory.",
		}),
	}

	reg.MustRegister(
		c.GatewayRequests, c.GatewayDuration,
		c.ListFetches, c.StaleResponses, c.DebounceCommits,
		c.Mutations, c.ActiveScreens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveGateway records one marketplace API call.
func (c *Collector) ObserveGateway(entity, op, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.GatewayRequests.WithLabelValues(entity, op, outcome).Inc()
	c.GatewayDuration.WithLabelValues(entity, op).Observe(d.Seconds())
}

// ListFetch counts a list fetch issued by a screen.
func (c *Collector) ListFetch(entity string) {
	if c == nil {
		return
	}
	c.ListFetches.WithLabelValues(entity).Inc()
}

// StaleResponse counts a list response that arrived after a newer fetch.
func (c *Collector) StaleResponse(entity string) {
	if c == nil {
		return
	}
	c.StaleResponses.WithLabelValues(entity).Inc()
}

// SearchCommitted counts a debounced search term reaching the query.
func (c *Collector) SearchCommitted(entity string) {
	if c == nil {
		return
	}
	c.DebounceCommits.WithLabelValues(entity).Inc()
}

// Mutation records the outcome of a create/update/toggle/delete.
func (c *Collector) Mutation(entity, action, outcome string) {
	if c == nil {
		return
	}
	c.Mutations.WithLabelValues(entity, action, outcome).Inc()
}

// ScreensChanged adjusts the in-memory screen gauge by delta.
func (c *Collector) ScreensChanged(delta float64) {
	if c == nil {
		return
	}
	c.ActiveScreens.Add(delta)
}
