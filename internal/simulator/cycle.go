package simulator

import (
	"slices"

	"github.com/roach88/spikeforge/internal/ir"
)

// zeroDelayCycles returns the neuron sets that form cycles through
// zero-delay synapses only. Each set is sorted, and the sets are ordered by
// their smallest member.
func zeroDelayCycles(n int, zero [][]int) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make([]int, n)
		lowlink = make([]int, n)
		onStack = make([]bool, n)
		sccs    [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range zero[v] {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || slices.Contains(zero[v], v) {
				slices.Sort(scc)
				sccs = append(sccs, scc)
			}
		}
	}

	for v := 0; v < n; v++ {
		if indices[v] < 0 {
			strongConnect(v)
		}
	}

	slices.SortFunc(sccs, func(a, b []int) int { return a[0] - b[0] })
	return sccs
}

// cycleNames renders a cycle as neuron names for error messages.
func cycleNames(g *ir.Graph, scc []int) []string {
	names := make([]string, len(scc))
	for i, id := range scc {
		names[i] = g.Name(id)
	}
	return names
}
