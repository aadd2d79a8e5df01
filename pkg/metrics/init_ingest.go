package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIngestMetrics() {
	r.AutomataBuiltTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "capsl_automata_built_total",
			Help: "Total number of automata built, by kind",
		},
		[]string{"kind"},
	)

	r.IngestErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "capsl_ingest_errors_total",
			Help: "Total number of input failures, by pipeline stage",
		},
		[]string{"stage"},
	)

	r.TranslationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capsl_translation_duration_seconds",
			Help:    "Duration of external rule-to-automaton translations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)
}
