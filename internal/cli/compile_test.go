package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Text(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), circuitsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 circuit(s)")
	assert.Contains(t, out, "adder: 10 neuron(s)")
	assert.Contains(t, out, "coincidence: 3 neuron(s)")
	assert.Contains(t, out, "fingerprint ")
}

func TestCompile_JSON(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), circuitsDir)
	require.NoError(t, err)

	var result CompilationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Circuits, 2)

	adder := result.Circuits[0]
	assert.Equal(t, "adder", adder.Name)
	assert.Equal(t, 50, adder.Steps)
	assert.Equal(t, 10, adder.Neurons)
	assert.Equal(t, 1, adder.Probes)
	assert.Len(t, adder.Fingerprint, 64)
	assert.Nil(t, adder.Graph, "graphs are only written with --output")
}

func TestCompile_FingerprintStable(t *testing.T) {
	var first, second CompilationResult
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), circuitsDir)
	require.NoError(t, err)
	decodeResponse(t, out, &first)
	out, _, err = execute(NewCompileCommand(&RootOptions{Format: "json"}), circuitsDir)
	require.NoError(t, err)
	decodeResponse(t, out, &second)

	assert.Equal(t, first.Circuits[0].Fingerprint, second.Circuits[0].Fingerprint)
	assert.NotEqual(t, first.Circuits[0].Fingerprint, first.Circuits[1].Fingerprint)
}

func TestCompile_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.json")

	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), circuitsDir, "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote finalized graphs to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Circuits, 2)
	require.NotNil(t, result.Circuits[1].Graph)
	assert.Equal(t, "Coin_main", result.Circuits[1].Graph.Neurons[2].Name)
}

func TestCompile_Describe(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), circuitsDir, "--describe", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Scaffold (finalized)")
	assert.Contains(t, out, "Add_Sum")
}

func TestCompile_MissingDir(t *testing.T) {
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/circuits")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCompile_NoCUEFiles(t *testing.T) {
	_, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestCompile_NoCircuits(t *testing.T) {
	dir := writeCUE(t, "package x\n\nother: 1\n")
	_, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoCircuits)
}

func TestCompile_CUEError(t *testing.T) {
	dir := writeCUE(t, "package x\n\ncircuit: c: {bricks: []}\n")
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
}

func TestCompile_WiringError(t *testing.T) {
	dir := writeCUE(t, `package x

circuit: bad: {
	steps: 10
	bricks: [
		{type: "vector_input", name: "In", params: spike_times: [[1], [2], [3]]},
		{type: "temporal_adder", name: "Add", inputs: [{sources: [{brick: "In"}]}]},
	]
}
`)
	out, _, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [ARITY_MISMATCH]")
}
