package scaffold

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable summary without mutating the scaffold.
//
// Verbosity 0 lists fragments, 1 adds neurons, 2 adds synapses. Before
// finalization neurons are shown by fragment-local index, since global
// identifiers do not exist yet.
func (s *Scaffold) Describe(verbosity int) string {
	var b strings.Builder

	if g := s.graph; g != nil {
		fmt.Fprintf(&b, "Scaffold (finalized): %d fragment(s), %d neuron(s), %d synapse(s)\n",
			len(g.Fragments), len(g.Neurons), len(g.Synapses))
		for _, f := range g.Fragments {
			fmt.Fprintf(&b, "  [%d] %s neurons=%d..%d inputs=%d outputs=%d%s\n",
				f.Index, f.Name, f.First, f.First+f.Count-1, len(f.Inputs), len(f.Outputs), probeMark(f.Probe))
			if verbosity < 1 {
				continue
			}
			for _, n := range g.Neurons[f.First : f.First+f.Count] {
				fmt.Fprintf(&b, "      #%d %s kind=%s threshold=%g%s\n", n.ID, n.Name, n.Kind, n.Threshold, probeMark(n.Probe))
			}
		}
		if verbosity >= 2 {
			for _, syn := range g.Synapses {
				fmt.Fprintf(&b, "  %d -> %d weight=%g delay=%d\n", syn.From, syn.To, syn.Weight, syn.Delay)
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Scaffold (open): %d fragment(s)\n", len(s.fragments))
	for i, f := range s.fragments {
		connected := 0
		for _, w := range f.inputs {
			if w != nil {
				connected++
			}
		}
		fmt.Fprintf(&b, "  [%d] %s neurons=%d inputs=%d/%d outputs=%d%s\n",
			i, f.builder.name, len(f.builder.neurons), connected, len(f.inputs), len(f.desc.Outputs), probeMark(f.probe))
		if verbosity >= 1 {
			for li, n := range f.builder.neurons {
				fmt.Fprintf(&b, "      %d.%d %s_%s kind=%s\n", i, li, f.builder.name, n.Role, n.Kind)
			}
		}
		if verbosity >= 2 {
			for _, syn := range f.builder.synapses {
				fmt.Fprintf(&b, "      %d.%d -> %d.%d weight=%g delay=%d\n", i, syn.from, i, syn.to, syn.weight, syn.delay)
			}
		}
	}
	return b.String()
}

func probeMark(probe bool) string {
	if probe {
		return " probe"
	}
	return ""
}
