package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Composition status label values
const (
	StatusSuccess      = "success"
	StatusIncompatible = "incompatible"
	StatusError        = "error"
)

// RecordComposition records one composition attempt. The state counts are
// ignored unless status is StatusSuccess. A nil registry records nothing.
func (r *Registry) RecordComposition(status string, duration time.Duration, synthesized, pruned, illegal int) {
	if r == nil {
		return
	}
	r.CompositionsTotal.WithLabelValues(status).Inc()
	r.CompositionDuration.Observe(duration.Seconds())

	if status != StatusSuccess {
		return
	}
	r.ProductStates.Observe(float64(synthesized))
	r.PrunedStatesTotal.Add(float64(pruned))
	r.IllegalStatesTotal.Add(float64(illegal))
}

// RecordAutomatonBuilt counts a finished automaton of the given kind
func (r *Registry) RecordAutomatonBuilt(kind string) {
	if r == nil {
		return
	}
	r.AutomataBuiltTotal.WithLabelValues(kind).Inc()
}

// RecordIngestError counts a failure at the given pipeline stage
func (r *Registry) RecordIngestError(stage string) {
	if r == nil {
		return
	}
	r.IngestErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordTranslation records the duration of one external translation
func (r *Registry) RecordTranslation(duration time.Duration) {
	if r == nil {
		return
	}
	r.TranslationDuration.Observe(duration.Seconds())
}

// WriteTextfile dumps the registry in the Prometheus text format, for the
// node exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
