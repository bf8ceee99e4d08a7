// Package compiler turns CUE circuit definitions into ir.CircuitSpec values
// and checks them statically before assembly.
//
// Circuits live under the top-level "circuit" field, keyed by name:
//
//	circuit: coincidence: {
//		steps: 15
//		bricks: [
//			{type: "vector_input", name: "Input", params: {spike_times: [[5, 10], [2, 10]]}},
//			{type: "instant_decay", name: "Coin", params: {channels: 2}, probe: true,
//			 inputs: [{sources: [{brick: "Input"}]}]},
//		]
//	}
package compiler
