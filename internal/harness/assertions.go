package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/spikeforge/internal/decode"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/spikes"
)

// AssertionError provides detailed context for assertion failures.
type AssertionError struct {
	Type     string
	Neuron   string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s assertion failed for %q:\n", e.Type, e.Neuron)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual:   %s\n", e.Actual)
	if len(e.Trace) > 0 {
		buf.WriteString("  Matching spikes:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "    step %d: %s\n", ev.Step, ev.Name)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the record and returns
// one message per failure.
func EvaluateAssertions(g *ir.Graph, rec *spikes.Record, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(g, rec, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(g *ir.Graph, rec *spikes.Record, a Assertion) error {
	if len(decode.Match(g, a.Neuron)) == 0 {
		return fmt.Errorf("no neuron matches %q", a.Neuron)
	}
	sel := decode.Select(g, rec, a.Neuron)

	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     a.Type,
			Neuron:   a.Neuron,
			Expected: expected,
			Actual:   actual,
			Trace:    buildTrace(g, sel),
		}
	}

	switch a.Type {
	case AssertFires:
		if sel.Len() == 0 {
			return fail("at least one spike", "no spikes")
		}
	case AssertSilent:
		if sel.Len() != 0 {
			return fail("no spikes", fmt.Sprintf("%d spike(s)", sel.Len()))
		}
	case AssertFireCount:
		if sel.Len() != a.Count {
			return fail(fmt.Sprintf("%d spike(s)", a.Count), fmt.Sprintf("%d spike(s)", sel.Len()))
		}
	case AssertFiresAt:
		got := make([]int, 0, sel.Len())
		for e := range sel.All() {
			got = append(got, e.Step)
		}
		if !slices.Equal(got, a.Steps) {
			return fail(fmt.Sprintf("steps %v", a.Steps), fmt.Sprintf("steps %v", got))
		}
	case AssertAffineDecode:
		if a.Expect == nil {
			return fmt.Errorf("%s assertion requires expect", a.Type)
		}
		af := decode.Affine{Scale: a.Scale, Offset: a.Offset}
		v, err := af.Decode(g, rec, a.Neuron)
		if err != nil {
			return fail(fmt.Sprintf("%g", *a.Expect), err.Error())
		}
		if v != *a.Expect {
			return fail(fmt.Sprintf("%g", *a.Expect), fmt.Sprintf("%g", v))
		}
	case AssertMaxLevel:
		if a.Expect == nil {
			return fmt.Errorf("%s assertion requires expect", a.Type)
		}
		lvl, err := decode.MaxLevel(g, rec, a.Neuron)
		if err != nil {
			return fail(fmt.Sprintf("%g", *a.Expect), err.Error())
		}
		if float64(lvl) != *a.Expect {
			return fail(fmt.Sprintf("%g", *a.Expect), fmt.Sprintf("%d", lvl))
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
