package brick

import (
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
)

// InstantDecay is a coincidence detector. Input port 0 has one position per
// channel, all feeding <name>_main, which fires only when every channel
// spikes in the same step.
type InstantDecay struct {
	Label    string `mapstructure:"-"`
	Channels int    `mapstructure:"channels"`
}

// Name implements scaffold.Brick.
func (b *InstantDecay) Name() string { return b.Label }

// Build implements scaffold.Brick.
func (b *InstantDecay) Build(fb *scaffold.FragmentBuilder) (*scaffold.Descriptor, error) {
	if b.Channels < 1 {
		return nil, scaffold.NewConfigurationError(b.Label, "channels", "must be at least 1")
	}

	main := fb.AddNeuron(scaffold.NeuronSpec{
		Role:      "main",
		Kind:      ir.KindInstantDecay,
		Threshold: float64(b.Channels),
	})
	in := scaffold.InputPort{Name: "channels", Targets: make([]scaffold.Handle, b.Channels)}
	for i := range in.Targets {
		in.Targets[i] = main
	}
	return &scaffold.Descriptor{
		Inputs:  []scaffold.InputPort{in},
		Outputs: []scaffold.OutputPort{{Name: "main", Neurons: []scaffold.Handle{main}}},
	}, nil
}
