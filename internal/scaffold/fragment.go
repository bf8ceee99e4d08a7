package scaffold

import (
	"fmt"
	"sort"

	"github.com/roach88/spikeforge/internal/ir"
)

// Brick builds one self-contained fragment of graph.
//
// Build may only append to the FragmentBuilder it receives. It returns the
// fragment's ports; a returned error means nothing is committed.
type Brick interface {
	Name() string
	Build(fb *FragmentBuilder) (*Descriptor, error)
}

// Handle addresses a neuron inside a fragment before finalization.
// The zero Handle is invalid.
type Handle struct {
	frag int
	ref  int // local index + 1
}

// Valid reports whether h was returned by AddNeuron.
func (h Handle) Valid() bool { return h.ref > 0 }

func (h Handle) local() int { return h.ref - 1 }

// NeuronSpec describes a neuron to append.
// The neuron is named <brick>_<Role>.
type NeuronSpec struct {
	Role      string
	Kind      ir.Kind
	Threshold float64
	Decay     float64
	Reset     float64
	Initial   float64
	Schedule  []int
}

// InputPort is a declared input position. Source k of a connection is wired
// to Targets[k]; several positions of Targets may name the same neuron.
type InputPort struct {
	Name    string
	Targets []Handle
}

// Arity returns the number of upstream neurons the port requires.
func (p InputPort) Arity() int { return len(p.Targets) }

// OutputPort is a declared output position.
type OutputPort struct {
	Name    string
	Neurons []Handle
}

// Descriptor exposes a fragment's ports by logical position.
type Descriptor struct {
	Inputs  []InputPort
	Outputs []OutputPort
}

type localSynapse struct {
	from, to int
	weight   float64
	delay    int
}

// FragmentBuilder is the private arena a brick appends to.
//
// Errors from AddNeuron and Connect are sticky: the first one is kept and
// reported when the scaffold commits the fragment.
type FragmentBuilder struct {
	index    int
	name     string
	neurons  []NeuronSpec
	synapses []localSynapse
	err      error
}

func newFragmentBuilder(index int, name string) *FragmentBuilder {
	return &FragmentBuilder{index: index, name: name}
}

// Name returns the brick name, used as the neuron name prefix.
func (fb *FragmentBuilder) Name() string { return fb.name }

// Len returns the number of neurons appended so far.
func (fb *FragmentBuilder) Len() int { return len(fb.neurons) }

// AddNeuron appends a neuron and returns its handle.
func (fb *FragmentBuilder) AddNeuron(spec NeuronSpec) Handle {
	if spec.Schedule != nil {
		schedule := append([]int(nil), spec.Schedule...)
		sort.Ints(schedule)
		if len(schedule) > 0 && schedule[0] < 0 {
			fb.fail(NewConfigurationError(fb.name, spec.Role, fmt.Sprintf("negative scheduled step %d", schedule[0])))
		}
		spec.Schedule = dedupe(schedule)
	}
	fb.neurons = append(fb.neurons, spec)
	return Handle{frag: fb.index, ref: len(fb.neurons)}
}

// Connect appends a synapse between two neurons of this fragment.
func (fb *FragmentBuilder) Connect(from, to Handle, weight float64, delay int) {
	if !fb.owns(from) || !fb.owns(to) {
		fb.fail(NewConfigurationError(fb.name, "synapse", "endpoint does not belong to this fragment"))
		return
	}
	if delay < 0 {
		fb.fail(NewConfigurationError(fb.name, "delay", fmt.Sprintf("must be >= 0, got %d", delay)))
		return
	}
	fb.synapses = append(fb.synapses, localSynapse{
		from:   from.local(),
		to:     to.local(),
		weight: weight,
		delay:  delay,
	})
}

// Err returns the first error recorded by the builder.
func (fb *FragmentBuilder) Err() error { return fb.err }

func (fb *FragmentBuilder) owns(h Handle) bool {
	return h.Valid() && h.frag == fb.index && h.local() < len(fb.neurons)
}

func (fb *FragmentBuilder) fail(err error) {
	if fb.err == nil {
		fb.err = err
	}
}

// check verifies that every handle in the descriptor belongs to the fragment.
func (fb *FragmentBuilder) check(desc *Descriptor) error {
	if desc == nil {
		return NewConfigurationError(fb.name, "descriptor", "brick returned no descriptor")
	}
	for i, in := range desc.Inputs {
		if len(in.Targets) == 0 {
			return NewConfigurationError(fb.name, fmt.Sprintf("inputs[%d]", i), "input port has zero arity")
		}
		for _, h := range in.Targets {
			if !fb.owns(h) {
				return NewConfigurationError(fb.name, fmt.Sprintf("inputs[%d]", i), "target does not belong to this fragment")
			}
		}
	}
	for i, out := range desc.Outputs {
		for _, h := range out.Neurons {
			if !fb.owns(h) {
				return NewConfigurationError(fb.name, fmt.Sprintf("outputs[%d]", i), "neuron does not belong to this fragment")
			}
		}
	}
	return nil
}

func dedupe(sorted []int) []int {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
