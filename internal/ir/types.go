package ir

// Neuron is a node of a finalized graph.
//
// Neurons are read-only once the graph is finalized. The simulator derives
// its own mutable runtime state keyed by ID.
type Neuron struct {
	// ID is dense and assigned at finalization.
	ID int `json:"id"`
	// Name follows <Fragment>_<Role>[_<Index>].
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Threshold float64 `json:"threshold"`
	// Decay is the fraction of potential lost per step (leaky only).
	Decay   float64 `json:"decay"`
	Reset   float64 `json:"reset"`
	Initial float64 `json:"initial"`
	// Schedule lists the steps a passive relay fires at, ascending.
	Schedule []int `json:"schedule,omitempty"`
	// Probe marks the neuron as observable in the spike stream.
	Probe    bool `json:"probe,omitempty"`
	Fragment int  `json:"fragment"`
}

// Synapse is a directed, delayed, weighted edge between two neurons.
type Synapse struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
	Delay  int     `json:"delay"`
}

// Fragment records what one brick contributed to a finalized graph.
//
// Neuron IDs First..First+Count-1 belong to the fragment. Inputs and Outputs
// hold resolved neuron IDs per port position.
type Fragment struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	First   int     `json:"first"`
	Count   int     `json:"count"`
	Inputs  [][]int `json:"inputs"`
	Outputs [][]int `json:"outputs"`
	Probe   bool    `json:"probe,omitempty"`
}

// SpikeEvent is one neuron firing at one step.
type SpikeEvent struct {
	Neuron int `json:"neuron"`
	Step   int `json:"step"`
}

// Graph is a finalized neuron graph.
//
// INVARIANT: Neurons[i].ID == i for every i.
type Graph struct {
	Neurons   []Neuron   `json:"neurons"`
	Synapses  []Synapse  `json:"synapses"`
	Fragments []Fragment `json:"fragments"`
}

// Neuron returns the neuron with the given ID.
func (g *Graph) Neuron(id int) (Neuron, bool) {
	if id < 0 || id >= len(g.Neurons) {
		return Neuron{}, false
	}
	return g.Neurons[id], true
}

// Name returns the name of neuron id, or "" if it does not exist.
func (g *Graph) Name(id int) string {
	n, ok := g.Neuron(id)
	if !ok {
		return ""
	}
	return n.Name
}

// MaxDelay returns the largest synaptic delay in the graph.
func (g *Graph) MaxDelay() int {
	maxDelay := 0
	for _, syn := range g.Synapses {
		if syn.Delay > maxDelay {
			maxDelay = syn.Delay
		}
	}
	return maxDelay
}

// Probes returns the IDs of probe-marked neurons in ascending order.
func (g *Graph) Probes() []int {
	var ids []int
	for _, n := range g.Neurons {
		if n.Probe {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
