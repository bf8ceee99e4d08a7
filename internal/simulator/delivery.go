package simulator

// effect is a weighted contribution travelling to a neuron.
type effect struct {
	to     int
	weight float64
}

// deliveryRing holds in-flight effects keyed by arrival step.
//
// A ring built with newDeliveryRing(d) has d+1 slots and accepts effects
// delayed by at most d steps, so a slot is always drained before it is
// reused. Not safe for concurrent use; each run owns its own ring.
type deliveryRing struct {
	slots [][]effect
}

func newDeliveryRing(span int) *deliveryRing {
	return &deliveryRing{slots: make([][]effect, span+1)}
}

// schedule queues an effect to arrive at step arrival.
func (r *deliveryRing) schedule(arrival, to int, weight float64) {
	slot := arrival % len(r.slots)
	r.slots[slot] = append(r.slots[slot], effect{to: to, weight: weight})
}

// drain adds every effect arriving at step into acc and empties the slot.
func (r *deliveryRing) drain(step int, acc []float64) {
	slot := step % len(r.slots)
	for _, e := range r.slots[slot] {
		acc[e.to] += e.weight
	}
	r.slots[slot] = r.slots[slot][:0]
}

// pending returns the number of effects still in flight.
func (r *deliveryRing) pending() int {
	n := 0
	for _, s := range r.slots {
		n += len(s)
	}
	return n
}
