package simulator

import (
	"fmt"
	"strings"

	"github.com/roach88/spikeforge/internal/ir"
)

// edge is an outgoing synapse as seen from its source neuron.
type edge struct {
	to     int
	weight float64
	delay  int
}

// Plan is a compiled, immutable execution plan for one graph.
//
// A Plan is safe for concurrent use: every Execute call allocates its own
// runtime state.
type Plan struct {
	graph    *ir.Graph
	order    []int
	out      [][]edge
	relays   map[int][]int
	record   []bool
	maxDelay int
	cfg      config
}

// Compile validates g and builds its execution plan.
func Compile(g *ir.Graph, opts ...Option) (*Plan, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return compile(g, cfg)
}

func compile(g *ir.Graph, cfg config) (*Plan, error) {
	if g == nil {
		return nil, newError(ErrCodeInvalidGraph, -1, "graph is nil")
	}

	n := len(g.Neurons)
	p := &Plan{
		graph:    g,
		out:      make([][]edge, n),
		relays:   make(map[int][]int),
		record:   make([]bool, n),
		maxDelay: g.MaxDelay(),
		cfg:      cfg,
	}

	for i := range g.Neurons {
		nr := &g.Neurons[i]
		if nr.ID != i {
			return nil, newError(ErrCodeInvalidGraph, i, "neuron at index %d has ID %d", i, nr.ID)
		}
		if !supported(nr.Kind) {
			return nil, newError(ErrCodeUnknownKind, i, "neuron %q has unsupported kind %s", nr.Name, nr.Kind)
		}
		if nr.Kind == ir.KindLeakyIntegrate && (nr.Decay < 0 || nr.Decay > 1) {
			return nil, newError(ErrCodeInvalidGraph, i, "neuron %q decay %g outside [0,1]", nr.Name, nr.Decay)
		}
		if nr.Kind == ir.KindPassiveRelay {
			for _, step := range nr.Schedule {
				if step < 0 {
					return nil, newError(ErrCodeInvalidGraph, i, "neuron %q schedules negative step %d", nr.Name, step)
				}
				p.relays[step] = append(p.relays[step], i)
			}
		}
		p.record[i] = cfg.recordAll || nr.Probe
	}

	zero := make([][]int, n)
	for _, syn := range g.Synapses {
		if syn.From < 0 || syn.From >= n || syn.To < 0 || syn.To >= n {
			return nil, newError(ErrCodeInvalidGraph, -1, "synapse %d -> %d references a missing neuron", syn.From, syn.To)
		}
		if syn.Delay < 0 {
			return nil, newError(ErrCodeInvalidGraph, syn.From, "synapse %d -> %d has negative delay %d", syn.From, syn.To, syn.Delay)
		}
		p.out[syn.From] = append(p.out[syn.From], edge{to: syn.To, weight: syn.Weight, delay: syn.Delay})
		if syn.Delay == 0 {
			zero[syn.From] = append(zero[syn.From], syn.To)
		}
	}

	order, ok := evaluationOrder(n, zero)
	if !ok {
		cycles := zeroDelayCycles(n, zero)
		first := cycles[0]
		return nil, newError(ErrCodeZeroDelayCycle, first[0],
			"zero-delay cycle through %s", strings.Join(cycleNames(g, first), ", "))
	}
	p.order = order

	cfg.logger.Info("plan compiled",
		"neurons", n,
		"synapses", len(g.Synapses),
		"max_delay", p.maxDelay,
		"recorded", p.recordedCount(),
	)
	cfg.metrics.ObserveCompile(n, len(g.Synapses))
	return p, nil
}

// Graph returns the graph the plan was compiled from.
func (p *Plan) Graph() *ir.Graph { return p.graph }

// Order returns the per-step evaluation order.
func (p *Plan) Order() []int { return append([]int(nil), p.order...) }

// MaxDelay returns the largest synaptic delay in the plan.
func (p *Plan) MaxDelay() int { return p.maxDelay }

// Recorded reports whether spikes of neuron id appear in the output.
func (p *Plan) Recorded(id int) bool {
	return id >= 0 && id < len(p.record) && p.record[id]
}

func (p *Plan) recordedCount() int {
	c := 0
	for _, r := range p.record {
		if r {
			c++
		}
	}
	return c
}

// String summarizes the plan.
func (p *Plan) String() string {
	return fmt.Sprintf("plan(neurons=%d, synapses=%d, max_delay=%d)",
		len(p.graph.Neurons), len(p.graph.Synapses), p.maxDelay)
}
