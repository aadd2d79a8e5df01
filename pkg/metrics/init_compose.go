package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initComposeMetrics() {
	r.CompositionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "capsl_compositions_total",
			Help: "Total number of automaton compositions attempted",
		},
		[]string{"status"},
	)

	r.CompositionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capsl_composition_duration_seconds",
			Help:    "Composition duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.ProductStates = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capsl_product_states",
			Help:    "Number of product states synthesized before pruning",
			Buckets: []float64{1, 4, 16, 64, 256, 1024, 4096},
		},
	)

	r.PrunedStatesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "capsl_pruned_states_total",
			Help: "Total number of unreachable product states removed",
		},
	)

	r.IllegalStatesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "capsl_illegal_states_total",
			Help: "Total number of reachable illegal product states",
		},
	)
}
