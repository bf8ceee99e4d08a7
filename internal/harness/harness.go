package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/spikeforge/internal/compiler"
	"github.com/roach88/spikeforge/internal/engine"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
	"github.com/roach88/spikeforge/internal/simulator"
	"github.com/roach88/spikeforge/internal/spikes"
	"github.com/roach88/spikeforge/internal/store"
	"github.com/roach88/spikeforge/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with fixed run IDs, so
// two runs of the same scenario produce identical results. The trace is
// read back from the store rather than taken from the simulator, which
// exercises the full record path.
//
// A returned error means the scenario could not be executed at all (bad
// source file, store failure). Rejections of the circuit itself are
// reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	spec, err := resolveCircuit(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng, err := engine.New(ctx, st,
		engine.WithIDGenerator(testutil.FixedRunIDs(1)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Steps = spec.Steps
	res, runErr := eng.Run(ctx, spec)

	if scenario.ExpectError != "" {
		switch {
		case runErr == nil:
			result.AddError(fmt.Sprintf("expected error %s, circuit ran", scenario.ExpectError))
		case !matchesError(runErr, scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected error %s, got: %v", scenario.ExpectError, runErr))
		default:
			result.RejectedWith = runErr.Error()
		}
		return result, nil
	}
	if runErr != nil {
		if isCircuitError(runErr) {
			result.AddError(fmt.Sprintf("circuit rejected: %v", runErr))
			return result, nil
		}
		return nil, runErr
	}

	events, err := st.ReadSpikes(ctx, res.Run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read spikes: %w", err)
	}
	g := res.Circuit.Graph
	rec := spikes.NewRecord(events, res.Run.Steps)

	result.RunID = res.Run.ID
	result.TraceHash = res.Run.TraceHash
	result.Trace = buildTrace(g, rec)

	for _, msg := range EvaluateAssertions(g, rec, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// resolveCircuit returns the inline circuit or compiles it from Source.
func resolveCircuit(s *Scenario) (ir.CircuitSpec, error) {
	if s.Circuit != nil {
		return *s.Circuit, nil
	}

	src, err := os.ReadFile(s.Source)
	if err != nil {
		return ir.CircuitSpec{}, fmt.Errorf("failed to read source: %w", err)
	}
	v := cuecontext.New().CompileBytes(src)
	if err := v.Err(); err != nil {
		return ir.CircuitSpec{}, fmt.Errorf("failed to compile %s: %w", s.Source, err)
	}
	specs, err := compiler.CompileCircuits(v)
	if err != nil {
		return ir.CircuitSpec{}, fmt.Errorf("failed to compile %s: %w", s.Source, err)
	}

	if s.CircuitName == "" {
		if len(specs) != 1 {
			return ir.CircuitSpec{}, fmt.Errorf("%s defines %d circuits, circuit_name is required", s.Source, len(specs))
		}
		return specs[0], nil
	}
	for _, spec := range specs {
		if spec.Name == s.CircuitName {
			return spec, nil
		}
	}
	return ir.CircuitSpec{}, fmt.Errorf("circuit %q not found in %s", s.CircuitName, s.Source)
}

// buildTrace resolves neuron names for every recorded spike.
func buildTrace(g *ir.Graph, rec *spikes.Record) []TraceEvent {
	trace := make([]TraceEvent, 0, rec.Len())
	for e := range rec.All() {
		trace = append(trace, TraceEvent{Neuron: e.Neuron, Name: g.Name(e.Neuron), Step: e.Step})
	}
	return trace
}

// isCircuitError reports whether err is a rejection of the circuit rather
// than an infrastructure failure.
func isCircuitError(err error) bool {
	return scaffold.IsConfigurationError(err) ||
		scaffold.IsWiringError(err) ||
		scaffold.IsIncompleteGraphError(err) ||
		simulator.IsSimulationError(err)
}

// matchesError reports whether err belongs to the class or carries the
// code named by want.
func matchesError(err error, want string) bool {
	switch want {
	case ErrorClassConfiguration:
		return scaffold.IsConfigurationError(err)
	case ErrorClassWiring:
		return scaffold.IsWiringError(err)
	case ErrorClassIncompleteGraph:
		return scaffold.IsIncompleteGraphError(err)
	case ErrorClassSimulation:
		return simulator.IsSimulationError(err)
	}
	if code := scaffold.WiringCode(err); code != "" && string(code) == want {
		return true
	}
	if code := simulator.ErrorCode(err); code != "" && string(code) == want {
		return true
	}
	return false
}
