package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SemanticFallbacks counts provider failures answered by keyword search.
var SemanticFallbacks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kagi_semantic_fallbacks_total",
		Help: "Total number of semantic requests answered by the keyword fallback",
	},
	[]string{"provider", "reason"},
)
