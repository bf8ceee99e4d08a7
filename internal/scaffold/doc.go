// Package scaffold assembles independently authored graph fragments into one
// finalized neuron graph.
//
// A Brick appends neurons and synapses to a private FragmentBuilder and
// declares its input and output ports. The Scaffold wires declared inputs to
// output ports of fragments added earlier, then Finalize assigns every neuron
// a dense identifier in one deterministic pass:
//
//	fragment addition order, then construction order within the fragment
//
// ARENA + INDEX:
// Before finalization, neurons are addressed by opaque Handles (fragment
// index + local index). Bricks never see global identifiers, so they can be
// written without knowing the final size of the graph, and re-running the
// same sequence of calls always yields the same identifiers.
//
// ATOMICITY:
//   - A brick that fails to build appends nothing
//   - A connection that fails to resolve leaves the scaffold unchanged
//   - Finalize either freezes the graph or leaves the scaffold as it was
package scaffold
