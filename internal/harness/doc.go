// Package harness runs circuit scenarios as executable contract tests.
//
// A scenario assembles a circuit, runs it through the engine into a fresh
// in-memory store, reads the recorded spikes back, and evaluates assertions
// against them by neuron name.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: adder_10_7
//	description: "10 + 7 under a value*2 latency code"
//	circuit:
//	  name: adder
//	  steps: 50
//	  bricks:
//	    - type: vector_input
//	      name: Input
//	      params: {spike_times: [[20], [14]]}
//	    - type: temporal_adder
//	      name: Add
//	      probe: true
//	      inputs:
//	        - sources: [{brick: Input}]
//	assertions:
//	  - type: affine_decode
//	    neuron: Sum
//	    scale: 0.5
//	    offset: -3
//	    expect: 17
//
// Instead of an inline circuit, a scenario may name a CUE file with source
// and pick one of its circuits with circuit_name. Paths are relative to the
// scenario file.
//
// A scenario whose circuit must be rejected sets expect_error to an error
// class (configuration, wiring, incomplete_graph, simulation) or an error
// code such as ARITY_MISMATCH or ZERO_DELAY_CYCLE.
//
// # Assertion Types
//
//   - fires: a neuron matching the name fired at least once
//   - silent: no neuron matching the name fired
//   - fire_count: matching neurons fired exactly count times in total
//   - fires_at: matching neurons fired at exactly the listed steps
//   - affine_decode: the single firing decodes to expect via scale and offset
//   - max_level: the largest fired _<k> suffix equals expect
//
// # Golden Files
//
// RunWithGolden compares a scenario's trace against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
