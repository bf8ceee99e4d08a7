package ir

// CircuitSpec describes a circuit as an ordered list of bricks.
//
// Bricks are added to the scaffold in slice order, so a brick may only take
// input from bricks that appear before it.
type CircuitSpec struct {
	Name      string      `json:"name" yaml:"name"`
	Steps     int         `json:"steps" yaml:"steps"`
	RecordAll bool        `json:"record_all,omitempty" yaml:"record_all,omitempty"`
	Bricks    []BrickSpec `json:"bricks" yaml:"bricks"`
}

// BrickSpec selects a brick type and its construction parameters.
type BrickSpec struct {
	Type   string         `json:"type" yaml:"type"`
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Inputs []InputSpec    `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Probe  bool           `json:"probe,omitempty" yaml:"probe,omitempty"`
}

// InputSpec wires one input position of a brick.
type InputSpec struct {
	Sources []PortSpec `json:"sources" yaml:"sources"`
	Delay   int        `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// PortSpec names an output port of an earlier brick, either by fragment
// index or by brick name. Brick takes precedence when set.
type PortSpec struct {
	Fragment int    `json:"fragment" yaml:"fragment"`
	Brick    string `json:"brick,omitempty" yaml:"brick,omitempty"`
	Port     int    `json:"port" yaml:"port"`
}
