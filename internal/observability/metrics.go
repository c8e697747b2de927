// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InitMetrics creates the Fiber Prometheus middleware that records per-route
// request counts and latencies for the named service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

var (
	// AuthzDecisions counts ownership authorization outcomes by entity and decision.
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_authz_decisions_total",
		Help: "Total number of ownership authorization decisions by entity type and outcome",
	}, []string{"entity", "action", "decision"})

	// HiddenEntityReads counts reads that resolved to NotFound because the
	// entity was filtered out by visibility rather than truly absent.
	HiddenEntityReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_hidden_entity_reads_total",
		Help: "Total number of reads denied by the visibility predicate",
	}, []string{"entity"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheHits counts cache-aside hits and misses by key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_requests_total",
		Help: "Total number of cache-aside lookups by key prefix and result",
	}, []string{"prefix", "result"})
)
