package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/spikeforge/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGraph returns a small two-neuron graph.
func createTestGraph() *ir.Graph {
	return &ir.Graph{
		Neurons: []ir.Neuron{
			{ID: 0, Name: "In_Channel_0", Kind: ir.KindPassiveRelay, Threshold: 1, Schedule: []int{2}},
			{ID: 1, Name: "Gate_main", Kind: ir.KindInstantDecay, Threshold: 1, Probe: true, Fragment: 1},
		},
		Synapses: []ir.Synapse{{From: 0, To: 1, Weight: 1, Delay: 1}},
		Fragments: []ir.Fragment{
			{Index: 0, Name: "In", First: 0, Count: 1, Outputs: [][]int{{0}}},
			{Index: 1, Name: "Gate", First: 1, Count: 1, Inputs: [][]int{{1}}, Outputs: [][]int{{1}}, Probe: true},
		},
	}
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string, seq int64, fingerprint string) Run {
	return Run{
		ID:               id,
		Seq:              seq,
		Circuit:          "gate",
		GraphFingerprint: fingerprint,
		Steps:            10,
		TraceHash:        "test-hash",
		EngineVersion:    ir.EngineVersion,
	}
}
