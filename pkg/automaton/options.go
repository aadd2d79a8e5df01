package automaton

import (
	"github.com/dd0wney/capsl/pkg/logging"
	"github.com/dd0wney/capsl/pkg/metrics"
)

// Option configures the logging and metrics of an automaton operation.
type Option func(*options)

type options struct {
	logger  logging.Logger
	metrics *metrics.Registry
	name    string
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the registry composition statistics are recorded in.
// A nil registry disables recording.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithName overrides the automaton name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.OrNop(o.logger)
	return o
}
