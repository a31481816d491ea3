package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cascades and variant hooks run without a surrounding transaction, so their
// failures leave the tree partially updated. The counters make those partial
// outcomes visible to operators.
var (
	cascadeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routenest",
		Subsystem: "tree",
		Name:      "cascade_failures_total",
		Help:      "Descendant operations that failed during a recursive cascade.",
	}, []string{"operation"})

	hookFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routenest",
		Subsystem: "tree",
		Name:      "hook_failures_total",
		Help:      "Variant hooks that failed after the node document was already written.",
	}, []string{"kind", "hook"})
)
