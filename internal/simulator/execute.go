package simulator

import (
	"slices"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/spikes"
)

// runState is the mutable per-run state derived from a plan.
type runState struct {
	potential []float64
	acc       []float64
	lastFired []int
	scheduled []bool
	ring      *deliveryRing
	dropped   int
}

// newRunState sizes the ring for a run of steps steps. No effect with a
// delay of steps or more can arrive in the run, so the ring never needs
// more than steps+1 slots.
func (p *Plan) newRunState(steps int) *runState {
	n := len(p.graph.Neurons)
	st := &runState{
		potential: make([]float64, n),
		acc:       make([]float64, n),
		lastFired: make([]int, n),
		scheduled: make([]bool, n),
		ring:      newDeliveryRing(min(p.maxDelay, steps)),
	}
	for i, nr := range p.graph.Neurons {
		st.potential[i] = nr.Initial
		st.lastFired[i] = -1
	}
	return st
}

// Execute runs the plan for steps steps from a fresh state and returns the
// recorded spikes.
func (p *Plan) Execute(steps int) (*spikes.Record, error) {
	if steps < 0 {
		return nil, newError(ErrCodeInvalidSteps, -1, "step count %d is negative", steps)
	}

	st := p.newRunState(steps)
	var events []ir.SpikeEvent
	var fired []int

	for t := 0; t < steps; t++ {
		st.ring.drain(t, st.acc)
		for _, id := range p.relays[t] {
			st.scheduled[id] = true
		}

		fired = fired[:0]
		for _, id := range p.order {
			v, spiked := advance(&p.graph.Neurons[id], st.potential[id], st.acc[id], st.scheduled[id])
			st.potential[id] = v
			if !spiked {
				continue
			}
			st.lastFired[id] = t
			fired = append(fired, id)
			for _, e := range p.out[id] {
				switch {
				case e.delay == 0:
					st.acc[e.to] += e.weight
				case e.delay >= steps-t:
					st.dropped++
				default:
					st.ring.schedule(t+e.delay, e.to, e.weight)
				}
			}
		}

		slices.Sort(fired)
		for _, id := range fired {
			if p.record[id] {
				events = append(events, ir.SpikeEvent{Neuron: id, Step: t})
			}
		}

		clear(st.acc)
		for _, id := range p.relays[t] {
			st.scheduled[id] = false
		}
	}

	p.cfg.logger.Debug("run finished",
		"steps", steps,
		"spikes", len(events),
		"dropped_effects", st.dropped+st.ring.pending(),
		"silent_neurons", countSilent(st.lastFired),
	)
	p.cfg.metrics.ObserveRun(steps, len(events))
	return spikes.NewRecord(events, steps), nil
}

func countSilent(lastFired []int) int {
	n := 0
	for _, t := range lastFired {
		if t < 0 {
			n++
		}
	}
	return n
}
