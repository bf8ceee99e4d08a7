package simulator

import (
	"io"
	"log/slog"

	"github.com/roach88/spikeforge/internal/metrics"
)

type config struct {
	recordAll bool
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

func defaultConfig() config {
	return config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Option configures compilation and execution.
type Option func(*config)

// WithRecordAll records every neuron, not only probes.
func WithRecordAll(on bool) Option {
	return func(c *config) {
		c.recordAll = on
	}
}

// WithLogger sets the logger. A nil logger keeps the default, which discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics reports compile and run activity to r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) {
		c.metrics = r
	}
}
