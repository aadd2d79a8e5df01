package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the checker pipeline
type Registry struct {
	// Composition Metrics
	CompositionsTotal   *prometheus.CounterVec
	CompositionDuration prometheus.Histogram
	ProductStates       prometheus.Histogram
	PrunedStatesTotal   prometheus.Counter
	IllegalStatesTotal  prometheus.Counter

	// Ingest Metrics
	AutomataBuiltTotal  *prometheus.CounterVec
	IngestErrorsTotal   *prometheus.CounterVec
	TranslationDuration prometheus.Histogram

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initComposeMetrics()
	r.initIngestMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
