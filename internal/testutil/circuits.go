// Package testutil builds the circuits used across package tests.
package testutil

import (
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
)

// LatencyCode presents each value v as a single spike at step scale*v.
func LatencyCode(scale int, values ...int) [][]int {
	times := make([][]int, len(values))
	for i, v := range values {
		times[i] = []int{scale * v}
	}
	return times
}

// Coincidence wires a spike-time input into a coincidence detector named
// Coin, whose output is probed.
func Coincidence(times [][]int, steps int) ir.CircuitSpec {
	return ir.CircuitSpec{
		Name:  "coincidence",
		Steps: steps,
		Bricks: []ir.BrickSpec{
			{Type: "vector_input", Name: "Input", Params: map[string]any{"spike_times": times}},
			{
				Type:   "instant_decay",
				Name:   "Coin",
				Params: map[string]any{"channels": len(times)},
				Probe:  true,
				Inputs: []ir.InputSpec{{Sources: []ir.PortSpec{{Brick: "Input"}}}},
			},
		},
	}
}

// Adder wires a and b, latency coded at two steps per unit, into a
// temporal adder named Add, whose Sum is probed.
func Adder(a, b int) ir.CircuitSpec {
	return ir.CircuitSpec{
		Name:  fmt.Sprintf("adder_%d_%d", a, b),
		Steps: 2*(a+b) + 10,
		Bricks: []ir.BrickSpec{
			{Type: "vector_input", Name: "Input", Params: map[string]any{"spike_times": LatencyCode(2, a, b)}},
			{
				Type:   "temporal_adder",
				Name:   "Add",
				Probe:  true,
				Inputs: []ir.InputSpec{{Sources: []ir.PortSpec{{Brick: "Input"}}}},
			},
		},
	}
}

// LIS wires seq, each value as a spike at that step, into a longest
// increasing subsequence brick named LIS, whose Main neurons are probed.
func LIS(seq ...int) ir.CircuitSpec {
	last := 0
	for _, v := range seq {
		last = max(last, v)
	}
	return ir.CircuitSpec{
		Name:  "lis",
		Steps: last + 3,
		Bricks: []ir.BrickSpec{
			{Type: "vector_input", Name: "Input", Params: map[string]any{"spike_times": LatencyCode(1, seq...)}},
			{
				Type:   "lis",
				Name:   "LIS",
				Params: map[string]any{"length": len(seq)},
				Probe:  true,
				Inputs: []ir.InputSpec{{Sources: []ir.PortSpec{{Brick: "Input"}}}},
			},
		},
	}
}
