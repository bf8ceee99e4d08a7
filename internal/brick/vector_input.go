package brick

import (
	"fmt"
	"strings"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
)

// CodingRaster is the only input coding: a 0/1 matrix, one row per channel.
const CodingRaster = "Raster"

// VectorInput injects a fixed spike pattern through one passive relay per
// channel. Output port 0 holds every channel in row order.
//
// With TimeDimension, Raster[c][t] == 1 makes channel c fire at step t.
// Without it, channel c fires once at step 0 if its row holds any 1.
// SpikeTimes is an alternative to Raster listing firing steps per channel;
// it implies TimeDimension.
type VectorInput struct {
	Label         string  `mapstructure:"-"`
	Raster        [][]int `mapstructure:"raster"`
	SpikeTimes    [][]int `mapstructure:"spike_times"`
	Coding        string  `mapstructure:"coding"`
	TimeDimension bool    `mapstructure:"time_dimension"`
}

// Name implements scaffold.Brick.
func (b *VectorInput) Name() string { return b.Label }

// Build implements scaffold.Brick.
func (b *VectorInput) Build(fb *scaffold.FragmentBuilder) (*scaffold.Descriptor, error) {
	if b.Coding != "" && !strings.EqualFold(b.Coding, CodingRaster) {
		return nil, scaffold.NewConfigurationError(b.Label, "coding", fmt.Sprintf("unsupported coding %q", b.Coding))
	}

	raster, timed := b.Raster, b.TimeDimension
	if b.SpikeTimes != nil {
		if b.Raster != nil {
			return nil, scaffold.NewConfigurationError(b.Label, "spike_times", "cannot be combined with raster")
		}
		r, err := RasterFromTimes(b.SpikeTimes)
		if err != nil {
			return nil, scaffold.NewConfigurationError(b.Label, "spike_times", err.Error())
		}
		raster, timed = r, true
	}
	if err := checkRaster(raster); err != nil {
		return nil, scaffold.NewConfigurationError(b.Label, "raster", err.Error())
	}

	out := scaffold.OutputPort{Name: "channels"}
	for c, row := range raster {
		var schedule []int
		for t, v := range row {
			if v != 1 {
				continue
			}
			if !timed {
				schedule = []int{0}
				break
			}
			schedule = append(schedule, t)
		}
		h := fb.AddNeuron(scaffold.NeuronSpec{
			Role:      fmt.Sprintf("Channel_%d", c),
			Kind:      ir.KindPassiveRelay,
			Threshold: 1,
			Schedule:  schedule,
		})
		out.Neurons = append(out.Neurons, h)
	}
	return &scaffold.Descriptor{Outputs: []scaffold.OutputPort{out}}, nil
}

func checkRaster(raster [][]int) error {
	if len(raster) == 0 {
		return fmt.Errorf("raster has no channels")
	}
	width := len(raster[0])
	for c, row := range raster {
		if len(row) != width {
			return fmt.Errorf("channel %d has %d steps, want %d", c, len(row), width)
		}
		for t, v := range row {
			if v != 0 && v != 1 {
				return fmt.Errorf("value %d at channel %d step %d is not 0 or 1", v, c, t)
			}
		}
	}
	return nil
}

// RasterFromTimes converts per-channel firing steps into a rectangular
// raster wide enough for the latest step.
func RasterFromTimes(times [][]int) ([][]int, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("no channels")
	}
	width := 1
	for c, steps := range times {
		for _, t := range steps {
			if t < 0 {
				return nil, fmt.Errorf("channel %d has negative step %d", c, t)
			}
			width = max(width, t+1)
		}
	}
	raster := make([][]int, len(times))
	for c, steps := range times {
		raster[c] = make([]int, width)
		for _, t := range steps {
			raster[c][t] = 1
		}
	}
	return raster, nil
}
