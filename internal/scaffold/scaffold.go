package scaffold

import (
	"io"
	"log/slog"

	"github.com/roach88/spikeforge/internal/ir"
)

// PortRef names output port Port of fragment Fragment.
type PortRef struct {
	Fragment int
	Port     int
}

// Connection wires one input position. The output neurons of Sources are
// concatenated in order; source k connects to target k of the input port
// with unit weight and the given delay.
type Connection struct {
	Sources []PortRef
	Delay   int
}

// Connected reports whether the connection names any source.
func (c Connection) Connected() bool { return len(c.Sources) > 0 }

type wiring struct {
	sources []Handle
	delay   int
}

type fragment struct {
	builder *FragmentBuilder
	desc    *Descriptor
	probe   bool
	inputs  []*wiring // per input position, nil while unconnected
}

// Scaffold owns the growing composition graph.
//
// Thread-safety: Scaffold is not safe for concurrent mutation. The graph
// returned by Finalize is immutable and may be shared freely.
type Scaffold struct {
	fragments []*fragment
	graph     *ir.Graph
	logger    *slog.Logger
}

// Option configures a Scaffold.
type Option func(*Scaffold)

// WithLogger sets the scaffold logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scaffold) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty scaffold.
func New(opts ...Option) *Scaffold {
	s := &Scaffold{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of fragments added.
func (s *Scaffold) Len() int { return len(s.fragments) }

// Finalized reports whether Finalize has succeeded.
func (s *Scaffold) Finalized() bool { return s.graph != nil }

// Lookup returns the index of the first fragment with the given brick name.
func (s *Scaffold) Lookup(name string) (int, bool) {
	for i, f := range s.fragments {
		if f.builder.name == name {
			return i, true
		}
	}
	return -1, false
}

// AddBrick builds b into a new fragment and wires inputs[i] to its input
// position i. Positions beyond len(inputs), or given an empty Connection,
// stay unconnected until Connect is called. If probe is set, the fragment's
// output neurons are observable in the spike stream.
//
// Returns the fragment index used to refer to the fragment's outputs.
func (s *Scaffold) AddBrick(b Brick, inputs []Connection, probe bool) (int, error) {
	if s.Finalized() {
		return -1, newWiringError(ErrCodeFinalized, -1, -1, "scaffold is finalized")
	}

	index := len(s.fragments)
	fb := newFragmentBuilder(index, b.Name())

	desc, err := b.Build(fb)
	if err != nil {
		return -1, err
	}
	if err := fb.Err(); err != nil {
		return -1, err
	}
	if err := fb.check(desc); err != nil {
		return -1, err
	}

	if len(inputs) > len(desc.Inputs) {
		return -1, newWiringError(ErrCodeUnknownPort, index, len(desc.Inputs),
			"brick %q declares %d input port(s), got %d connection(s)", b.Name(), len(desc.Inputs), len(inputs))
	}

	// Resolve everything before committing so a bad connection leaves the
	// scaffold untouched.
	wired := make([]*wiring, len(desc.Inputs))
	for pos, conn := range inputs {
		if !conn.Connected() {
			continue
		}
		w, err := s.resolve(index, pos, desc.Inputs[pos], conn)
		if err != nil {
			return -1, err
		}
		wired[pos] = w
	}

	s.fragments = append(s.fragments, &fragment{
		builder: fb,
		desc:    desc,
		probe:   probe,
		inputs:  wired,
	})

	s.logger.Debug("brick added",
		"fragment", index,
		"brick", b.Name(),
		"neurons", fb.Len(),
		"synapses", len(fb.synapses),
		"probe", probe,
	)

	return index, nil
}

// Connect wires input position of an already added fragment.
func (s *Scaffold) Connect(target, position int, conn Connection) error {
	if s.Finalized() {
		return newWiringError(ErrCodeFinalized, target, position, "scaffold is finalized")
	}
	if target < 0 || target >= len(s.fragments) {
		return newWiringError(ErrCodeUnknownFragment, target, position, "no fragment %d", target)
	}
	f := s.fragments[target]
	if position < 0 || position >= len(f.desc.Inputs) {
		return newWiringError(ErrCodeUnknownPort, target, position,
			"brick %q has no input port %d", f.builder.name, position)
	}
	if f.inputs[position] != nil {
		return newWiringError(ErrCodeAlreadyConnected, target, position, "input already connected")
	}

	w, err := s.resolve(target, position, f.desc.Inputs[position], conn)
	if err != nil {
		return err
	}
	f.inputs[position] = w
	return nil
}

// resolve maps a connection onto source handles, checking existence, order
// and arity.
func (s *Scaffold) resolve(target, position int, port InputPort, conn Connection) (*wiring, error) {
	if conn.Delay < 0 {
		return nil, newWiringError(ErrCodeInvalidDelay, target, position, "delay must be >= 0, got %d", conn.Delay)
	}

	var sources []Handle
	for _, ref := range conn.Sources {
		if ref.Fragment < 0 || ref.Fragment >= len(s.fragments) {
			return nil, newWiringError(ErrCodeUnknownFragment, target, position, "no fragment %d", ref.Fragment)
		}
		if ref.Fragment >= target {
			return nil, newWiringError(ErrCodeForwardReference, target, position,
				"fragment %d is not added before fragment %d", ref.Fragment, target)
		}
		src := s.fragments[ref.Fragment]
		if ref.Port < 0 || ref.Port >= len(src.desc.Outputs) {
			return nil, newWiringError(ErrCodeUnknownPort, target, position,
				"brick %q has no output port %d", src.builder.name, ref.Port)
		}
		sources = append(sources, src.desc.Outputs[ref.Port].Neurons...)
	}

	if len(sources) != port.Arity() {
		return nil, newWiringError(ErrCodeArityMismatch, target, position,
			"input port %q expects %d neuron(s), got %d", port.Name, port.Arity(), len(sources))
	}

	return &wiring{sources: sources, delay: conn.Delay}, nil
}
