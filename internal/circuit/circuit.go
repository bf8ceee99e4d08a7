// Package circuit assembles a declarative circuit definition into a
// finalized graph and compiled plan.
package circuit

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/spikeforge/internal/brick"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/metrics"
	"github.com/roach88/spikeforge/internal/scaffold"
	"github.com/roach88/spikeforge/internal/simulator"
	"github.com/roach88/spikeforge/internal/spikes"
)

// Circuit is an assembled and compiled circuit.
type Circuit struct {
	Spec     ir.CircuitSpec
	Scaffold *scaffold.Scaffold
	Graph    *ir.Graph
	Plan     *simulator.Plan
}

type options struct {
	logger    *slog.Logger
	metrics   *metrics.Recorder
	recordAll bool
}

// Option configures Assemble.
type Option func(*options)

// WithLogger sets the logger used by the scaffold and simulator.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics reports compile and run activity.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithRecordAll records every neuron regardless of the definition.
func WithRecordAll(on bool) Option {
	return func(o *options) { o.recordAll = on }
}

// Assemble builds every brick of spec in order, wires their inputs,
// finalizes the scaffold and compiles the plan.
func Assemble(spec ir.CircuitSpec, opts ...Option) (*Circuit, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("circuit", spec.Name)

	s := scaffold.New(scaffold.WithLogger(logger))
	for i, bs := range spec.Bricks {
		b, err := brick.New(bs.Type, bs.Name, bs.Params)
		if err != nil {
			return nil, fmt.Errorf("brick %d (%s): %w", i, bs.Name, err)
		}
		conns, err := connections(s, i, bs.Inputs)
		if err != nil {
			return nil, fmt.Errorf("brick %d (%s): %w", i, bs.Name, err)
		}
		if _, err := s.AddBrick(b, conns, bs.Probe); err != nil {
			return nil, fmt.Errorf("brick %d (%s): %w", i, bs.Name, err)
		}
	}

	g, err := s.Finalize()
	if err != nil {
		return nil, err
	}

	plan, err := simulator.Compile(g,
		simulator.WithLogger(logger),
		simulator.WithMetrics(o.metrics),
		simulator.WithRecordAll(o.recordAll || spec.RecordAll),
	)
	if err != nil {
		return nil, err
	}

	return &Circuit{Spec: spec, Scaffold: s, Graph: g, Plan: plan}, nil
}

// connections resolves brick-name port references against the bricks
// already added.
func connections(s *scaffold.Scaffold, target int, inputs []ir.InputSpec) ([]scaffold.Connection, error) {
	conns := make([]scaffold.Connection, len(inputs))
	for pos, in := range inputs {
		conns[pos].Delay = in.Delay
		for _, src := range in.Sources {
			frag := src.Fragment
			if src.Brick != "" {
				idx, ok := s.Lookup(src.Brick)
				if !ok {
					return nil, &scaffold.WiringError{
						Code:     scaffold.ErrCodeUnknownFragment,
						Fragment: target,
						Position: pos,
						Message:  fmt.Sprintf("no brick named %q before this one", src.Brick),
					}
				}
				frag = idx
			}
			conns[pos].Sources = append(conns[pos].Sources, scaffold.PortRef{Fragment: frag, Port: src.Port})
		}
	}
	return conns, nil
}

// Run simulates the circuit for its configured number of steps.
func (c *Circuit) Run() (*spikes.Record, error) {
	return c.Plan.Execute(c.Spec.Steps)
}
