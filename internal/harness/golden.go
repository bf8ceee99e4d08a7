package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/spikeforge/internal/ir"
)

// Snapshot renders a result's trace as canonical JSON, the golden file
// format:
//
//	{"scenario_name":"...","steps":N,"trace":[{"name":"...","neuron":I,"step":S}]}
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		trace[i] = map[string]any{
			"neuron": e.Neuron,
			"name":   e.Name,
			"step":   e.Step,
		}
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"steps":         result.Steps,
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
