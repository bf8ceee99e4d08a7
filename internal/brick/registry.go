package brick

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/spikeforge/internal/scaffold"
)

// Brick type names accepted by New.
const (
	TypeVectorInput   = "vector_input"
	TypeInstantDecay  = "instant_decay"
	TypeTemporalAdder = "temporal_adder"
	TypeLIS           = "lis"
)

var constructors = map[string]func(name string) scaffold.Brick{
	TypeVectorInput:   func(name string) scaffold.Brick { return &VectorInput{Label: name} },
	TypeInstantDecay:  func(name string) scaffold.Brick { return &InstantDecay{Label: name} },
	TypeTemporalAdder: func(name string) scaffold.Brick { return &TemporalAdder{Label: name} },
	TypeLIS:           func(name string) scaffold.Brick { return &LIS{Label: name} },
}

// Types returns the registered brick type names, sorted.
func Types() []string {
	types := make([]string, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New creates a brick of the given type and decodes params into it.
// Unknown types and unknown parameters are configuration errors.
func New(typ, name string, params map[string]any) (scaffold.Brick, error) {
	ctor, ok := constructors[typ]
	if !ok {
		return nil, scaffold.NewConfigurationError(name, "type", fmt.Sprintf("unknown brick type %q", typ))
	}
	if name == "" {
		return nil, scaffold.NewConfigurationError(name, "name", "brick name is required")
	}

	b := ctor(name)
	if len(params) == 0 {
		return b, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           b,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(params); err != nil {
		return nil, scaffold.NewConfigurationError(name, "params", err.Error())
	}
	return b, nil
}
