package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeforge/internal/compiler"
)

func TestValidate_Valid(t *testing.T) {
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), circuitsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 circuit(s) valid")
}

func TestValidate_StaticErrors(t *testing.T) {
	dir := writeCUE(t, `package x

circuit: bad: {
	steps: -1
	bricks: [
		{type: "photon", name: "P"},
		{type: "lis", name: "P", params: length: 2, inputs: [{sources: [{brick: "Later"}]}]},
	]
}
`)
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.False(t, result.Valid)
	require.Len(t, result.Circuits, 1)

	var codes []string
	for _, e := range result.Circuits[0].Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, compiler.ErrNegativeSteps)
	assert.Contains(t, codes, compiler.ErrUnknownBrickType)
	assert.Contains(t, codes, compiler.ErrDuplicateBrickName)
	assert.Contains(t, codes, compiler.ErrInvalidReference)
}

func TestValidate_AssemblyError(t *testing.T) {
	dir := writeCUE(t, `package x

circuit: ok: {
	steps: 5
	bricks: [
		{type: "vector_input", name: "In", params: spike_times: [[1]]},
		{type: "lis", name: "L", params: length: 1, inputs: [{sources: [{brick: "In"}]}]},
	]
}

circuit: incomplete: {
	steps: 5
	bricks: [{type: "instant_decay", name: "Coin", params: channels: 2}]
}
`)
	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "✗ incomplete")
	assert.Contains(t, out, "✓ ok")
	assert.Contains(t, out, "INCOMPLETE_GRAPH")
}
