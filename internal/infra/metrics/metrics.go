// Package metrics exposes the Prometheus collectors of the playlist
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "music_tonight"

type Metrics struct {
	cacheGets         *prometheus.CounterVec
	cacheCoalesced    prometheus.Counter
	cacheWrites       *prometheus.CounterVec
	catalogLookups    *prometheus.CounterVec
	rateLimitDelay    *prometheus.HistogramVec
	searchAttempts    prometheus.Histogram
	playlistBuilds    *prometheus.CounterVec
	playlistDurations prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDurations     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheGets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kvstore",
			Name:      "gets_total",
			Help:      "Artist store reads by outcome (hit, miss, error).",
		}, []string{"outcome"}),
		cacheCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kvstore",
			Name:      "coalesced_gets_total",
			Help:      "Reads served by another caller's in-flight backend read.",
		}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kvstore",
			Name:      "writes_total",
			Help:      "Artist store writes by outcome (ok, error).",
		}, []string{"outcome"}),
		catalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "lookups_total",
			Help:      "Catalog artist lookups by provider and outcome (found, not_found, error).",
		}, []string{"provider", "outcome"}),
		rateLimitDelay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "delay_seconds",
			Help:      "Delay imposed on outbound calls by the rate limiter.",
			Buckets:   []float64{0, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4},
		}, []string{"provider"}),
		searchAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "search_attempts",
			Help:      "Number of radius attempts needed by an event search.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		playlistBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "playlist",
			Name:      "builds_total",
			Help:      "Playlist builds by outcome (ok or the error kind).",
		}, []string{"outcome"}),
		playlistDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "playlist",
			Name:      "build_duration_seconds",
			Help:      "Wall time of playlist builds.",
			Buckets:   prometheus.DefBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.cacheGets,
		m.cacheCoalesced,
		m.cacheWrites,
		m.catalogLookups,
		m.rateLimitDelay,
		m.searchAttempts,
		m.playlistBuilds,
		m.playlistDurations,
		m.httpRequests,
		m.httpDurations,
	)

	return m
}

func (m *Metrics) CacheGet(outcome string) {
	if m == nil {
		return
	}
	m.cacheGets.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheCoalesced() {
	if m == nil {
		return
	}
	m.cacheCoalesced.Inc()
}

func (m *Metrics) CacheWrite(outcome string) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CatalogLookup(provider, outcome string) {
	if m == nil {
		return
	}
	m.catalogLookups.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RateLimitDelay(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.rateLimitDelay.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) SearchAttempts(n int) {
	if m == nil {
		return
	}
	m.searchAttempts.Observe(float64(n))
}

func (m *Metrics) PlaylistBuild(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.playlistBuilds.WithLabelValues(outcome).Inc()
	m.playlistDurations.Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(route).Observe(d.Seconds())
}
