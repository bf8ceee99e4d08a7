// Package decode reads domain results out of spike records using the
// <Fragment>_<Role>[_<Index>] naming convention.
//
// Decoding is brick-specific: a brick documents which role carries its
// answer and whether the answer is coded by which neuron fires or by when
// it fires. This package provides the shared helpers.
package decode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/spikes"
)

// ErrNoSpike is returned when no matching neuron fired.
var ErrNoSpike = errors.New("no matching neuron fired")

// Match returns the IDs of neurons whose name contains substr, ascending.
func Match(g *ir.Graph, substr string) []int {
	var ids []int
	for _, n := range g.Neurons {
		if strings.Contains(n.Name, substr) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Select returns the part of r produced by neurons whose name contains
// substr.
func Select(g *ir.Graph, r *spikes.Record, substr string) *spikes.Record {
	return r.Filter(Match(g, substr)...)
}

// Fired reports whether any neuron whose name contains substr fired.
func Fired(g *ir.Graph, r *spikes.Record, substr string) bool {
	return Select(g, r, substr).Len() > 0
}

// Affine maps a firing step to a value as Scale*step + Offset.
type Affine struct {
	Scale  float64
	Offset float64
}

// Value applies the mapping.
func (a Affine) Value(step int) float64 {
	return a.Scale*float64(step) + a.Offset
}

// Latency returns the single step at which a neuron matching substr fired.
// It is an error for the matching neurons to fire zero or several times.
func Latency(g *ir.Graph, r *spikes.Record, substr string) (int, error) {
	sel := Select(g, r, substr)
	switch sel.Len() {
	case 0:
		return 0, fmt.Errorf("%q: %w", substr, ErrNoSpike)
	case 1:
		return sel.At(0).Step, nil
	default:
		return 0, fmt.Errorf("%q fired %d times, want exactly once", substr, sel.Len())
	}
}

// Decode applies a to the single firing of the neuron matching substr.
func (a Affine) Decode(g *ir.Graph, r *spikes.Record, substr string) (float64, error) {
	step, err := Latency(g, r, substr)
	if err != nil {
		return 0, err
	}
	return a.Value(step), nil
}

// Level returns the numeric suffix of a neuron name, as in Frag_Main_7.
func Level(name string) (int, bool) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return 0, false
	}
	v, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, false
	}
	return v, true
}

// MaxLevel returns the largest numeric suffix among fired neurons whose name
// contains substr. This decodes magnitude-as-identity outputs.
func MaxLevel(g *ir.Graph, r *spikes.Record, substr string) (int, error) {
	best, found := 0, false
	for _, id := range Select(g, r, substr).Neurons() {
		lvl, ok := Level(g.Name(id))
		if !ok {
			continue
		}
		if !found || lvl > best {
			best, found = lvl, true
		}
	}
	if !found {
		return 0, fmt.Errorf("%q: %w", substr, ErrNoSpike)
	}
	return best, nil
}

// Named is a spike event with the neuron's name resolved.
type Named struct {
	Name string `json:"name"`
	ir.SpikeEvent
}

// Names resolves every event of r against g.
func Names(g *ir.Graph, r *spikes.Record) []Named {
	out := make([]Named, 0, r.Len())
	for e := range r.All() {
		out = append(out, Named{Name: g.Name(e.Neuron), SpikeEvent: e})
	}
	return out
}
