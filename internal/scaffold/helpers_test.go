package scaffold

import (
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
)

// relayBrick emits n passive relays, each firing at its channel index.
type relayBrick struct {
	name string
	n    int
}

func (b relayBrick) Name() string { return b.name }

func (b relayBrick) Build(fb *FragmentBuilder) (*Descriptor, error) {
	if b.n <= 0 {
		return nil, NewConfigurationError(b.name, "n", "must be positive")
	}
	out := OutputPort{Name: "channels"}
	for i := 0; i < b.n; i++ {
		h := fb.AddNeuron(NeuronSpec{
			Role:      fmt.Sprintf("%d", i),
			Kind:      ir.KindPassiveRelay,
			Threshold: 1,
			Schedule:  []int{i},
		})
		out.Neurons = append(out.Neurons, h)
	}
	return &Descriptor{Outputs: []OutputPort{out}}, nil
}

// gateBrick has one input port of arity n feeding a single coincidence neuron.
type gateBrick struct {
	name string
	n    int
}

func (b gateBrick) Name() string { return b.name }

func (b gateBrick) Build(fb *FragmentBuilder) (*Descriptor, error) {
	main := fb.AddNeuron(NeuronSpec{Role: "main", Kind: ir.KindInstantDecay, Threshold: float64(b.n)})
	in := InputPort{Name: "in"}
	for i := 0; i < b.n; i++ {
		in.Targets = append(in.Targets, main)
	}
	return &Descriptor{
		Inputs:  []InputPort{in},
		Outputs: []OutputPort{{Name: "main", Neurons: []Handle{main}}},
	}, nil
}

// brokenBrick appends a neuron then records a bad synapse.
type brokenBrick struct{}

func (brokenBrick) Name() string { return "Broken" }

func (brokenBrick) Build(fb *FragmentBuilder) (*Descriptor, error) {
	a := fb.AddNeuron(NeuronSpec{Role: "a", Kind: ir.KindInstantDecay, Threshold: 1})
	fb.Connect(a, a, 1, -1)
	return &Descriptor{}, nil
}

// foreignBrick tries to expose a handle it did not create.
type foreignBrick struct{ h Handle }

func (foreignBrick) Name() string { return "Foreign" }

func (b foreignBrick) Build(fb *FragmentBuilder) (*Descriptor, error) {
	fb.AddNeuron(NeuronSpec{Role: "x", Kind: ir.KindInstantDecay, Threshold: 1})
	return &Descriptor{Outputs: []OutputPort{{Neurons: []Handle{b.h}}}}, nil
}

func from(fragment, port int) []Connection {
	return []Connection{{Sources: []PortRef{{Fragment: fragment, Port: port}}}}
}
