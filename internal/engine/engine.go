package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/spikeforge/internal/circuit"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/metrics"
	"github.com/roach88/spikeforge/internal/spikes"
	"github.com/roach88/spikeforge/internal/store"
)

// Engine runs circuits and appends them to a run log.
//
// Thread-safety: Run and Replay may be called from several goroutines; the
// store serializes writes and run seq numbers are handed out atomically.
type Engine struct {
	store     *store.Store
	clock     *runClock
	ids       RunIDGenerator
	logger    *slog.Logger
	metrics   *metrics.Recorder
	recordAll bool
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithIDGenerator sets the run ID generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics reports compile and run activity to r.
func WithMetrics(r *metrics.Recorder) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithRecordAll records every neuron of every run, not only probes.
func WithRecordAll(on bool) EngineOption {
	return func(e *Engine) {
		e.recordAll = on
	}
}

// New creates an engine writing to st. A nil store runs circuits without
// recording them. The clock resumes after the last recorded run.
func New(ctx context.Context, st *store.Store, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		store:  st,
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	var last int64
	if st != nil {
		var err error
		if last, err = st.LastSeq(ctx); err != nil {
			return nil, err
		}
	}
	e.clock = resumeClock(last)
	return e, nil
}

// Result is the outcome of one run.
type Result struct {
	Run     store.Run
	Circuit *circuit.Circuit
	Record  *spikes.Record
}

// Run assembles spec, executes it for spec.Steps steps and records the run.
func (e *Engine) Run(ctx context.Context, spec ir.CircuitSpec) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recordAll := e.recordAll || spec.RecordAll
	c, err := circuit.Assemble(spec,
		circuit.WithLogger(e.logger),
		circuit.WithMetrics(e.metrics),
		circuit.WithRecordAll(recordAll),
	)
	if err != nil {
		return nil, err
	}

	rec, err := c.Run()
	if err != nil {
		return nil, err
	}

	hash, err := rec.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash trace: %w", err)
	}
	fp, err := ir.Fingerprint(c.Graph)
	if err != nil {
		return nil, fmt.Errorf("fingerprint graph: %w", err)
	}

	run := store.Run{
		ID:               e.ids.Generate(),
		Seq:              e.clock.next(),
		Circuit:          spec.Name,
		GraphFingerprint: fp,
		Steps:            spec.Steps,
		RecordAll:        recordAll,
		SpikeCount:       rec.Len(),
		TraceHash:        hash,
		EngineVersion:    ir.EngineVersion,
	}

	if e.store != nil {
		if _, err := e.store.WriteGraph(ctx, c.Graph); err != nil {
			return nil, err
		}
		if err := e.store.WriteRun(ctx, run, rec.Events()); err != nil {
			return nil, err
		}
	}

	e.logger.Info("run recorded",
		"run_id", run.ID,
		"seq", run.Seq,
		"circuit", run.Circuit,
		"steps", run.Steps,
		"spikes", run.SpikeCount,
	)
	return &Result{Run: run, Circuit: c, Record: rec}, nil
}
