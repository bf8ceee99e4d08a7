package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/spikeforge/internal/brick"
	"github.com/roach88/spikeforge/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrNoBricks           = "E201" // circuit has no bricks
	ErrNegativeSteps      = "E202" // steps < 0
	ErrUnknownBrickType   = "E203" // type not in the brick registry
	ErrMissingBrickName   = "E204" // brick name is empty
	ErrDuplicateBrickName = "E205" // two bricks share a name
	ErrInvalidReference   = "E206" // source names a missing or later brick
	ErrNegativeDelay      = "E207" // input delay < 0
	ErrEmptySources       = "E208" // input lists no sources
)

// ValidationError represents a static circuit validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a circuit before assembly.
// Returns all errors found (does not fail-fast).
func Validate(spec *ir.CircuitSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if spec.Steps < 0 {
		add("steps", ErrNegativeSteps, "steps must be >= 0, got %d", spec.Steps)
	}
	if len(spec.Bricks) == 0 {
		add("bricks", ErrNoBricks, "circuit %q has no bricks", spec.Name)
	}

	types := brick.Types()
	seen := make(map[string]int)
	for i, b := range spec.Bricks {
		field := fmt.Sprintf("bricks[%d]", i)
		if !slices.Contains(types, b.Type) {
			add(field+".type", ErrUnknownBrickType, "unknown brick type %q", b.Type)
		}
		if b.Name == "" {
			add(field+".name", ErrMissingBrickName, "brick name is required")
		} else if prev, dup := seen[b.Name]; dup {
			add(field+".name", ErrDuplicateBrickName, "name %q already used by bricks[%d]", b.Name, prev)
		} else {
			seen[b.Name] = i
		}

		for j, in := range b.Inputs {
			inField := fmt.Sprintf("%s.inputs[%d]", field, j)
			if in.Delay < 0 {
				add(inField+".delay", ErrNegativeDelay, "delay must be >= 0, got %d", in.Delay)
			}
			if len(in.Sources) == 0 {
				add(inField+".sources", ErrEmptySources, "input lists no sources")
			}
			for k, src := range in.Sources {
				srcField := fmt.Sprintf("%s.sources[%d]", inField, k)
				if src.Brick != "" {
					if idx, ok := seen[src.Brick]; !ok || idx >= i {
						add(srcField, ErrInvalidReference, "brick %q is not defined before %q", src.Brick, b.Name)
					}
					continue
				}
				if src.Fragment < 0 || src.Fragment >= i {
					add(srcField, ErrInvalidReference, "fragment %d is not defined before %q", src.Fragment, b.Name)
				}
			}
		}
	}

	return errs
}
