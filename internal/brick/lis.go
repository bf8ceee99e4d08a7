package brick

import (
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
)

// LIS finds the length of the longest strictly increasing subsequence of
// Length values, each presented as a single spike at the step equal to the
// value.
//
// Output port 0 holds <name>_Main_1 through <name>_Main_<Length>. The answer
// is the largest k whose Main_k fires.
//
// Track_i_k fires when element i ends an increasing run of length k: it
// needs element i's own spike plus a Latch_j_(k-1) from some earlier
// position j that already fired at a smaller step. Latches stay on from the
// step after their tracker fires.
type LIS struct {
	Label  string `mapstructure:"-"`
	Length int    `mapstructure:"length"`
}

// Name implements scaffold.Brick.
func (b *LIS) Name() string { return b.Label }

// Build implements scaffold.Brick.
func (b *LIS) Build(fb *scaffold.FragmentBuilder) (*scaffold.Descriptor, error) {
	n := b.Length
	if n < 1 {
		return nil, scaffold.NewConfigurationError(b.Label, "length", "must be at least 1")
	}
	weight := float64(n)

	instant := func(role string, threshold float64) scaffold.Handle {
		return fb.AddNeuron(scaffold.NeuronSpec{Role: role, Kind: ir.KindInstantDecay, Threshold: threshold})
	}

	// track[i][k-1] is Track_i_k; the level-1 tracker is the input itself.
	track := make([][]scaffold.Handle, n)
	latch := make([][]scaffold.Handle, n)
	in := scaffold.InputPort{Name: "sequence", Targets: make([]scaffold.Handle, n)}
	for i := 0; i < n; i++ {
		h := instant(fmt.Sprintf("Track_%d_1", i), 1)
		in.Targets[i] = h
		track[i] = []scaffold.Handle{h}
	}

	for k := 1; k <= n; k++ {
		for i := k - 1; i < n; i++ {
			if k > 1 {
				h := instant(fmt.Sprintf("Track_%d_%d", i, k), weight+1)
				fb.Connect(track[i][0], h, weight, 0)
				for j := k - 2; j < i; j++ {
					fb.Connect(latch[j][k-2], h, 1, 0)
				}
				track[i] = append(track[i], h)
			}
			if k < n {
				l := instant(fmt.Sprintf("Latch_%d_%d", i, k), 1)
				fb.Connect(track[i][k-1], l, 1, 1)
				fb.Connect(l, l, 1, 1)
				latch[i] = append(latch[i], l)
			}
		}
	}

	out := scaffold.OutputPort{Name: "levels", Neurons: make([]scaffold.Handle, n)}
	for k := 1; k <= n; k++ {
		m := instant(fmt.Sprintf("Main_%d", k), 1)
		for i := k - 1; i < n; i++ {
			fb.Connect(track[i][k-1], m, 1, 0)
		}
		out.Neurons[k-1] = m
	}

	return &scaffold.Descriptor{
		Inputs:  []scaffold.InputPort{in},
		Outputs: []scaffold.OutputPort{out},
	}, nil
}
