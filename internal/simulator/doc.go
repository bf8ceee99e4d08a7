// Package simulator executes a finalized spiking graph in discrete time.
//
// A graph is first compiled into a Plan, which fixes the per-step
// evaluation order and validates every neuron kind. Runs against a Plan are
// deterministic: the same plan and step count always produce the same spike
// record.
//
// Each step proceeds as:
//  1. Effects scheduled to arrive at this step are summed into each target's
//     input accumulator.
//  2. Neurons are evaluated once, in plan order. Zero-delay synapses are
//     delivered within the step, so plan order is a topological order of
//     the zero-delay subgraph with ties broken by ascending neuron ID.
//  3. A firing neuron resets and schedules its outgoing effects at
//     step + delay.
//
// Effects whose arrival falls beyond the final step are dropped.
package simulator
