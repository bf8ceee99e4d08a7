package brick

import (
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
)

// Decode constants of the temporal adder under a value*2 input coding.
const (
	AdderScale  = 0.5
	AdderOffset = -3.0
)

// adderLatency is the step offset between the sum of the input spike times
// and the firing of <name>_Sum.
const adderLatency = 6

// TemporalAdder adds two latency-coded values.
//
// Input port 0 takes two channels that each spike once, at t_a and t_b.
// <name>_Sum fires exactly once, at t_a + t_b + 6. When each value v is
// presented at step 2v, the sum is AdderScale*fire_step + AdderOffset.
//
// A "before" gate latches on at step 0 and is cleared by the first input.
// The accumulator Q integrates -1 per step while the gate is on. Once both
// inputs arrived an "after" gate feeds Q +1 per step until it reaches
// threshold, which takes as many steps as Q spent counting down.
type TemporalAdder struct {
	Label  string `mapstructure:"-"`
	Inputs int    `mapstructure:"inputs"`
}

// Name implements scaffold.Brick.
func (b *TemporalAdder) Name() string { return b.Label }

// Build implements scaffold.Brick.
func (b *TemporalAdder) Build(fb *scaffold.FragmentBuilder) (*scaffold.Descriptor, error) {
	if b.Inputs != 0 && b.Inputs != 2 {
		return nil, scaffold.NewConfigurationError(b.Label, "inputs", fmt.Sprintf("only 2 inputs are supported, got %d", b.Inputs))
	}

	gate := func(role string) scaffold.Handle {
		return fb.AddNeuron(scaffold.NeuronSpec{Role: role, Kind: ir.KindInstantDecay, Threshold: 1})
	}

	a := gate("A_in")
	bIn := gate("B_in")
	start := fb.AddNeuron(scaffold.NeuronSpec{
		Role:      "start",
		Kind:      ir.KindPassiveRelay,
		Threshold: 1,
		Schedule:  []int{0},
	})
	before := gate("before")
	both := fb.AddNeuron(scaffold.NeuronSpec{Role: "both", Kind: ir.KindLeakyIntegrate, Threshold: 2})
	after := gate("after")
	q := fb.AddNeuron(scaffold.NeuronSpec{Role: "Q", Kind: ir.KindLeakyIntegrate, Threshold: 1})
	sum := gate("Sum")

	fb.Connect(start, before, 1, 0)
	fb.Connect(before, before, 1, 1)
	fb.Connect(a, before, -2, 0)
	fb.Connect(bIn, before, -2, 0)
	fb.Connect(before, q, -1, 1)

	fb.Connect(a, both, 1, 0)
	fb.Connect(bIn, both, 1, 0)
	fb.Connect(both, after, 1, 0)
	fb.Connect(after, after, 1, 1)
	fb.Connect(after, q, 1, 1)
	fb.Connect(q, after, -2, 0)

	fb.Connect(q, sum, 1, adderLatency-1)

	return &scaffold.Descriptor{
		Inputs:  []scaffold.InputPort{{Name: "values", Targets: []scaffold.Handle{a, bIn}}},
		Outputs: []scaffold.OutputPort{{Name: "Sum", Neurons: []scaffold.Handle{sum}}},
	}, nil
}
