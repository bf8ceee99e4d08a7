package cli

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_RequiresDB(t *testing.T) {
	_, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTrace_ListEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestTrace_ListRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "adder")
}

func TestTrace_Run(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+id+" (seq 1)")
	assert.Contains(t, out, "step   40  #9 Add_Sum")
	assert.Contains(t, out, "1 spike(s) from 1 neuron(s), steps 40..40")
}

func TestTrace_JSONFilter(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), id, "--db", db, "--neuron", "Sum")
	require.NoError(t, err)
	var result TraceResult
	decodeResponse(t, out, &result)
	assert.Equal(t, id, result.Run.ID)
	assert.Equal(t, 10, result.Stats.GraphNeurons)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, TraceSpike{Step: 40, Neuron: 9, Name: "Add_Sum"}, result.Timeline[0])

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "json"}), id, "--db", db, "--neuron", "Input")
	require.NoError(t, err)
	decodeResponse(t, out, &result)
	assert.Empty(t, result.Timeline)
}

func TestTrace_StepWindow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	var result TraceResult
	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), id, "--db", db, "--from", "30", "--to", "40")
	require.NoError(t, err)
	decodeResponse(t, out, &result)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, 40, result.Stats.FirstStep)

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "json"}), id, "--db", db, "--from", "41")
	require.NoError(t, err)
	decodeResponse(t, out, &result)
	assert.Empty(t, result.Timeline)
}

func TestTrace_InvertedWindow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), id, "--db", db, "--from", "9", "--to", "3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidFilter)
}

func TestTrace_ListByCircuit(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db, "--circuit", "adder")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", db, "--circuit", "coincidence")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestTrace_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "missing", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeRunNotFound)
}

func TestReplay_Deterministic(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	recordRun(t, db)
	recordRun(t, db)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 run(s) replayed deterministically")
}

func TestReplay_SingleRunJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), id, "--db", db)
	require.NoError(t, err)
	var result ReplayResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Runs, 1)
	assert.True(t, result.AllDeterministic)
	assert.Equal(t, 1, result.Runs[0].StoredSpikes)
	assert.Equal(t, result.Runs[0].StoredHash, result.Runs[0].ReplayHash)
}

func TestReplay_DetectsTamperedTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	id := recordRun(t, db)

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE runs SET trace_hash = 'tampered' WHERE id = ?`, id)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+id)
	assert.Contains(t, out, "recorded tampered")
}

func TestReplay_UnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "missing", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}
