// Package spikes holds the output artifact of a simulation run: an ordered,
// re-iterable sequence of spike events.
//
// Events are ordered by step, then by ascending neuron identifier. A Record
// is immutable; filters return new records.
package spikes

import (
	"iter"
	"slices"
	"sort"

	"github.com/roach88/spikeforge/internal/ir"
)

// Record is the spike stream produced by one run.
type Record struct {
	events []ir.SpikeEvent
	steps  int
}

// NewRecord creates a record from events of a run that lasted steps steps.
// The events are copied and put in canonical order.
func NewRecord(events []ir.SpikeEvent, steps int) *Record {
	cp := append([]ir.SpikeEvent(nil), events...)
	sort.SliceStable(cp, func(i, j int) bool {
		if cp[i].Step != cp[j].Step {
			return cp[i].Step < cp[j].Step
		}
		return cp[i].Neuron < cp[j].Neuron
	})
	return &Record{events: cp, steps: steps}
}

// Len returns the number of events.
func (r *Record) Len() int { return len(r.events) }

// Steps returns the number of steps the run lasted.
func (r *Record) Steps() int { return r.steps }

// At returns the i-th event.
func (r *Record) At(i int) ir.SpikeEvent { return r.events[i] }

// Events returns a copy of the events.
func (r *Record) Events() []ir.SpikeEvent {
	return append([]ir.SpikeEvent(nil), r.events...)
}

// All iterates the events in order. The sequence can be ranged over any
// number of times.
func (r *Record) All() iter.Seq[ir.SpikeEvent] {
	return func(yield func(ir.SpikeEvent) bool) {
		for _, e := range r.events {
			if !yield(e) {
				return
			}
		}
	}
}

// Filter returns the events of the given neurons only.
func (r *Record) Filter(ids ...int) *Record {
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	var out []ir.SpikeEvent
	for _, e := range r.events {
		if keep[e.Neuron] {
			out = append(out, e)
		}
	}
	return &Record{events: out, steps: r.steps}
}

// Times returns the steps at which neuron id fired, ascending.
func (r *Record) Times(id int) []int {
	var times []int
	for _, e := range r.events {
		if e.Neuron == id {
			times = append(times, e.Step)
		}
	}
	return times
}

// Fired reports whether neuron id fired at all.
func (r *Record) Fired(id int) bool {
	return slices.ContainsFunc(r.events, func(e ir.SpikeEvent) bool { return e.Neuron == id })
}

// Neurons returns the distinct neurons that fired, ascending.
func (r *Record) Neurons() []int {
	var ids []int
	for _, e := range r.events {
		ids = append(ids, e.Neuron)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Equal reports whether two records hold the same events and step count.
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	return r.steps == other.steps && slices.Equal(r.events, other.events)
}

// Hash returns the content hash of the event sequence.
func (r *Record) Hash() (string, error) {
	return ir.TraceHash(r.events)
}
