package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/spikeforge/internal/ir"
)

// CompileCircuits compiles every circuit under the "circuit" field of v.
// Circuits are returned in source order.
func CompileCircuits(v cue.Value) ([]ir.CircuitSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	circuits := v.LookupPath(cue.ParsePath("circuit"))
	if !circuits.Exists() {
		return nil, nil
	}
	iter, err := circuits.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.CircuitSpec
	for iter.Next() {
		spec, err := CompileCircuit(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileCircuit parses one circuit struct. The circuit name is the
// struct's label, e.g. "adder" for circuit.adder.
func CompileCircuit(v cue.Value) (*ir.CircuitSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.CircuitSpec{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		spec.Name = sels[len(sels)-1].Unquoted()
	}

	steps, ok, err := lookupInt(v, "steps")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CompileError{Field: "steps", Message: "steps is required", Pos: v.Pos()}
	}
	spec.Steps = steps

	if spec.RecordAll, _, err = lookupBool(v, "record_all"); err != nil {
		return nil, err
	}

	bricksVal := v.LookupPath(cue.ParsePath("bricks"))
	if !bricksVal.Exists() {
		return nil, &CompileError{Field: "bricks", Message: "bricks is required", Pos: v.Pos()}
	}
	iter, err := bricksVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		b, err := compileBrick(iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Bricks = append(spec.Bricks, b)
	}
	if len(spec.Bricks) == 0 {
		return nil, &CompileError{Field: "bricks", Message: "at least one brick is required", Pos: bricksVal.Pos()}
	}

	return spec, nil
}

func compileBrick(v cue.Value) (ir.BrickSpec, error) {
	var b ir.BrickSpec
	var ok bool
	var err error

	if b.Type, ok, err = lookupString(v, "type"); err != nil {
		return b, err
	} else if !ok {
		return b, &CompileError{Field: "type", Message: "brick type is required", Pos: v.Pos()}
	}
	if b.Name, ok, err = lookupString(v, "name"); err != nil {
		return b, err
	} else if !ok {
		return b, &CompileError{Field: "name", Message: "brick name is required", Pos: v.Pos()}
	}
	if b.Probe, _, err = lookupBool(v, "probe"); err != nil {
		return b, err
	}

	if params := v.LookupPath(cue.ParsePath("params")); params.Exists() {
		if params.Kind() != cue.StructKind {
			return b, &CompileError{Field: "params", Message: "params must be a struct", Pos: params.Pos()}
		}
		val, err := toGo(params)
		if err != nil {
			return b, err
		}
		b.Params = val.(map[string]any)
	}

	if inputs := v.LookupPath(cue.ParsePath("inputs")); inputs.Exists() {
		iter, err := inputs.List()
		if err != nil {
			return b, formatCUEError(err)
		}
		for iter.Next() {
			in, err := compileInput(iter.Value())
			if err != nil {
				return b, err
			}
			b.Inputs = append(b.Inputs, in)
		}
	}

	return b, nil
}

func compileInput(v cue.Value) (ir.InputSpec, error) {
	var in ir.InputSpec
	var err error

	if in.Delay, _, err = lookupInt(v, "delay"); err != nil {
		return in, err
	}

	sources := v.LookupPath(cue.ParsePath("sources"))
	if !sources.Exists() {
		return in, &CompileError{Field: "sources", Message: "sources is required", Pos: v.Pos()}
	}
	iter, err := sources.List()
	if err != nil {
		return in, formatCUEError(err)
	}
	for iter.Next() {
		src := iter.Value()
		var ps ir.PortSpec
		frag, hasFrag, err := lookupInt(src, "fragment")
		if err != nil {
			return in, err
		}
		name, hasName, err := lookupString(src, "brick")
		if err != nil {
			return in, err
		}
		if !hasFrag && !hasName {
			return in, &CompileError{Field: "sources", Message: "source needs a fragment index or a brick name", Pos: src.Pos()}
		}
		ps.Fragment, ps.Brick = frag, name
		if ps.Port, _, err = lookupInt(src, "port"); err != nil {
			return in, err
		}
		in.Sources = append(in.Sources, ps)
	}
	return in, nil
}

func lookupInt(v cue.Value, field string) (int, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return 0, false, nil
	}
	i, err := f.Int64()
	if err != nil {
		return 0, true, &CompileError{Field: field, Message: fmt.Sprintf("%s must be an integer", field), Pos: f.Pos()}
	}
	return int(i), true, nil
}

func lookupString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", true, &CompileError{Field: field, Message: fmt.Sprintf("%s must be a string", field), Pos: f.Pos()}
	}
	return s, true, nil
}

func lookupBool(v cue.Value, field string) (bool, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, true, &CompileError{Field: field, Message: fmt.Sprintf("%s must be a boolean", field), Pos: f.Pos()}
	}
	return b, true, nil
}

// toGo converts a concrete CUE value into plain Go values: int, float64,
// string, bool, []any and map[string]any.
func toGo(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return int(i), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := []any{}
		for iter.Next() {
			e, err := toGo(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := map[string]any{}
		for iter.Next() {
			e, err := toGo(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Selector().Unquoted()] = e
		}
		return out, nil
	default:
		return nil, &CompileError{
			Field:   "params",
			Message: fmt.Sprintf("value must be concrete, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
