// Package metrics exposes the resolver's Prometheus instrumentation,
// relabeled from the teacher's authoritative-server counters for the
// resolution-engine concerns this repo actually has: retries,
// escalations, cache tiers, and upstream server health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal tracks completed Resolver.Lookup calls by outcome.
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolvercore_lookups_total",
		Help: "Total number of resolver lookups, labeled by qtype and final rcode",
	}, []string{"qtype", "rcode"})

	// LookupDuration tracks end-to-end Lookup latency.
	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resolvercore_lookup_duration_seconds",
		Help:    "Histogram of Lookup duration, labeled by whether the cache served it",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// TransmissionsTotal tracks every exchange the engine performs, one
	// per server transmission (including UDP->TCP escalation attempts).
	TransmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolvercore_transmissions_total",
		Help: "Total number of transmissions to upstream servers, labeled by protocol and outcome",
	}, []string{"protocol", "outcome"})

	// EscalationsTotal tracks UDP->TCP escalations specifically.
	EscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolvercore_escalations_total",
		Help: "Total number of UDP to TCP escalations performed",
	})

	// RetriesLimitExceededTotal tracks resolutions that exhausted the
	// global retransmission budget.
	RetriesLimitExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolvercore_retries_limit_exceeded_total",
		Help: "Total number of resolutions that exhausted the global retransmission budget",
	})

	// CacheOperations tracks local and secondary-tier cache hits/misses.
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolvercore_cache_operations_total",
		Help: "Total number of cache hits and misses, labeled by tier and section",
	}, []string{"tier", "section", "result"})

	// ServerHealthy reports the last-known health of each configured
	// upstream server (1 = healthy, 0 = unhealthy), per server address.
	ServerHealthy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resolvercore_server_healthy",
		Help: "Health of each configured upstream server",
	}, []string{"server"})

	// DBConnectionsActive tracks open storage connections.
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resolvercore_db_connections_active",
		Help: "Number of active storage connections",
	})
)
