package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeforge/internal/engine"
)

func TestRun_Text(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir, "--circuit", "adder")
	require.NoError(t, err)

	assert.Contains(t, out, "circuit adder, 50 step(s), 1 spike(s)")
	assert.Contains(t, out, "step   40  #9 Add_Sum")
	assert.NotContains(t, out, "Recorded in")
}

func TestRun_JSON(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), circuitsDir, "--circuit", "coincidence")
	require.NoError(t, err)

	var res RunOutput
	resp := decodeResponse(t, out, &res)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "coincidence", res.Circuit)
	assert.Equal(t, 1, res.SpikeCount)
	require.Len(t, res.Spikes, 1)
	assert.Equal(t, "Coin_main", res.Spikes[0].Name)
	assert.Equal(t, 10, res.Spikes[0].Step)
	assert.False(t, res.Stored)
	assert.Len(t, res.TraceHash, 64)
}

func TestRun_StepsOverride(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), circuitsDir, "--circuit", "adder", "--steps", "30")
	require.NoError(t, err)

	var res RunOutput
	decodeResponse(t, out, &res)
	assert.Equal(t, 30, res.Steps)
	assert.Equal(t, 0, res.SpikeCount)
	assert.Empty(t, res.Spikes)
}

func TestRun_RecordAll(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), circuitsDir, "--circuit", "coincidence", "--record-all")
	require.NoError(t, err)

	var res RunOutput
	decodeResponse(t, out, &res)
	// Four input spikes plus the coincidence.
	assert.Equal(t, 5, res.SpikeCount)
}

func TestRun_RequiresCircuitWhenAmbiguous(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnknownCircuit)
	assert.Contains(t, out, "select one with --circuit")
}

func TestRun_UnknownCircuit(t *testing.T) {
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir, "--circuit", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `circuit "nope" not found`)
}

func TestRun_SingleCircuitNeedsNoName(t *testing.T) {
	dir := writeCUE(t, `package x

circuit: only: {
	steps: 5
	bricks: [
		{type: "vector_input", name: "In", params: spike_times: [[1]]},
		{type: "lis", name: "L", probe: true, params: length: 1, inputs: [{sources: [{brick: "In"}]}]},
	]
}
`)
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "L_Main_1")
}

func TestRun_Database(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir, "--circuit", "adder", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "(seq 1)")
	assert.Contains(t, out, "Recorded in "+db)

	out, _, err = execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir, "--circuit", "adder", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "(seq 2)", "sequence resumes from the database")
}

func TestRun_FixedIDs(t *testing.T) {
	opts := &RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		Circuit:     "adder",
		Steps:       -1,
		IDs:         engine.NewFixedGenerator("run-a"),
	}
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(opts.RootOptions)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runCircuit(opts, circuitsDir, cmd))
	assert.Contains(t, buf.String(), "Run run-a (seq 1)")
}

func TestRun_Metrics(t *testing.T) {
	_, errOut, err := execute(NewRunCommand(&RootOptions{Format: "text"}), circuitsDir, "--circuit", "adder", "--metrics")
	require.NoError(t, err)

	assert.Contains(t, errOut, "spikeforge_runs_total 1")
	assert.Contains(t, errOut, "spikeforge_spikes_total 1")
	assert.Contains(t, errOut, "spikeforge_steps_total 50")
}
