package scaffold

import (
	"github.com/roach88/spikeforge/internal/ir"
)

// Finalize assigns every neuron its identifier, validates the graph and
// freezes the scaffold.
//
// Identifiers are contiguous from 0 in fragment addition order, then
// construction order within each fragment. Synapses are emitted per
// fragment: incoming wiring by input position first, then the fragment's
// internal synapses in construction order.
//
// Finalize is all-or-nothing. On error the scaffold is unchanged and can be
// completed and finalized again. After success further calls return the
// same graph.
func (s *Scaffold) Finalize() (*ir.Graph, error) {
	if s.graph != nil {
		return s.graph, nil
	}

	if missing := s.unconnected(); len(missing) > 0 {
		return nil, &IncompleteGraphError{Missing: missing}
	}

	offsets := make([]int, len(s.fragments))
	total := 0
	for i, f := range s.fragments {
		offsets[i] = total
		total += len(f.builder.neurons)
	}
	id := func(h Handle) int { return offsets[h.frag] + h.local() }

	g := &ir.Graph{
		Neurons:   make([]ir.Neuron, 0, total),
		Fragments: make([]ir.Fragment, 0, len(s.fragments)),
	}

	for fi, f := range s.fragments {
		for li, spec := range f.builder.neurons {
			g.Neurons = append(g.Neurons, ir.Neuron{
				ID:        offsets[fi] + li,
				Name:      f.builder.name + "_" + spec.Role,
				Kind:      spec.Kind,
				Threshold: spec.Threshold,
				Decay:     spec.Decay,
				Reset:     spec.Reset,
				Initial:   spec.Initial,
				Schedule:  spec.Schedule,
				Fragment:  fi,
			})
		}
	}

	for fi, f := range s.fragments {
		for pos, w := range f.inputs {
			targets := f.desc.Inputs[pos].Targets
			for k, src := range w.sources {
				g.Synapses = append(g.Synapses, ir.Synapse{
					From:   id(src),
					To:     id(targets[k]),
					Weight: 1,
					Delay:  w.delay,
				})
			}
		}
		for _, syn := range f.builder.synapses {
			g.Synapses = append(g.Synapses, ir.Synapse{
				From:   offsets[fi] + syn.from,
				To:     offsets[fi] + syn.to,
				Weight: syn.weight,
				Delay:  syn.delay,
			})
		}

		frag := ir.Fragment{
			Index:   fi,
			Name:    f.builder.name,
			First:   offsets[fi],
			Count:   len(f.builder.neurons),
			Inputs:  make([][]int, len(f.desc.Inputs)),
			Outputs: make([][]int, len(f.desc.Outputs)),
			Probe:   f.probe,
		}
		for pos, in := range f.desc.Inputs {
			frag.Inputs[pos] = handleIDs(in.Targets, id)
		}
		for pos, out := range f.desc.Outputs {
			frag.Outputs[pos] = handleIDs(out.Neurons, id)
			if f.probe {
				for _, nid := range frag.Outputs[pos] {
					g.Neurons[nid].Probe = true
				}
			}
		}
		g.Fragments = append(g.Fragments, frag)
	}

	if err := validateIDs(g); err != nil {
		return nil, err
	}

	s.graph = g
	s.logger.Info("scaffold finalized",
		"fragments", len(g.Fragments),
		"neurons", len(g.Neurons),
		"synapses", len(g.Synapses),
		"probes", len(g.Probes()),
	)
	return g, nil
}

// Graph returns the finalized graph, or nil before Finalize succeeds.
func (s *Scaffold) Graph() *ir.Graph { return s.graph }

// unconnected lists every declared input port without a connection, in
// fragment then position order.
func (s *Scaffold) unconnected() []PortAddress {
	var missing []PortAddress
	for fi, f := range s.fragments {
		for pos, w := range f.inputs {
			if w == nil {
				missing = append(missing, PortAddress{
					Fragment: fi,
					Name:     f.builder.name,
					Position: pos,
				})
			}
		}
	}
	return missing
}

func handleIDs(hs []Handle, id func(Handle) int) []int {
	ids := make([]int, len(hs))
	for i, h := range hs {
		ids[i] = id(h)
	}
	return ids
}

// validateIDs checks identifier uniqueness and synapse endpoints.
func validateIDs(g *ir.Graph) error {
	seen := make(map[int]bool, len(g.Neurons))
	for i, n := range g.Neurons {
		if seen[n.ID] || n.ID != i {
			return newWiringError(ErrCodeDuplicateID, n.Fragment, -1, "neuron %q has identifier %d at position %d", n.Name, n.ID, i)
		}
		seen[n.ID] = true
	}
	for _, syn := range g.Synapses {
		if !seen[syn.From] || !seen[syn.To] {
			return newWiringError(ErrCodeDuplicateID, -1, -1, "synapse %d->%d references a missing neuron", syn.From, syn.To)
		}
	}
	return nil
}
