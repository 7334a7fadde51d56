package rewrite

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CacheLabel = "cache"
	RuleLabel  = "rule"
	LimitLabel = "limit"

	cacheKindMap = "map"
	cacheKindLRU = "lru"
)

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boolex_rewrite_cache_hits_total",
			Help: "Monotonic count of rewrite cache lookups that found a finished rewrite",
		},
		[]string{CacheLabel},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boolex_rewrite_cache_misses_total",
			Help: "Monotonic count of rewrite cache lookups that found nothing",
		},
		[]string{CacheLabel},
	)

	ruleFirings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boolex_rule_firings_total",
			Help: "Monotonic count of rule applications that changed a node",
		},
		[]string{RuleLabel},
	)

	limitExceeded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boolex_rewrite_limit_exceeded_total",
			Help: "Monotonic count of rewrites aborted by a size or step limit",
		},
		[]string{LimitLabel},
	)

	notConverged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "boolex_rewrite_not_converged_total",
			Help: "Monotonic count of rewrites aborted because a node hit the iteration cap",
		},
	)
)

// Register adds the rewrite collectors to r. Nothing is registered by default.
func Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{cacheHits, cacheMisses, ruleFirings, limitExceeded, notConverged} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
