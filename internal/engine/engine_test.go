package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/store"
)

func adderSpec() ir.CircuitSpec {
	return ir.CircuitSpec{
		Name:  "adder",
		Steps: 50,
		Bricks: []ir.BrickSpec{
			{Type: "vector_input", Name: "Input", Params: map[string]any{"spike_times": [][]int{{20}, {14}}}},
			{
				Type:   "temporal_adder",
				Name:   "Add",
				Probe:  true,
				Inputs: []ir.InputSpec{{Sources: []ir.PortSpec{{Brick: "Input"}}}},
			},
		},
	}
}

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRun_RecordsRun(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, ":memory:")
	e, err := New(ctx, st, WithIDGenerator(NewFixedGenerator("run-1", "run-2")))
	require.NoError(t, err)

	res, err := e.Run(ctx, adderSpec())
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.Run.ID)
	assert.Equal(t, int64(1), res.Run.Seq)
	assert.Equal(t, 1, res.Run.SpikeCount)

	stored, err := st.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Run, stored)

	events, err := st.ReadSpikes(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Record.Events(), events)

	res2, err := e.Run(ctx, adderSpec())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res2.Run.Seq)
	assert.Equal(t, res.Run.TraceHash, res2.Run.TraceHash)
	assert.Equal(t, res.Run.GraphFingerprint, res2.Run.GraphFingerprint)
}

func TestNew_ResumesClock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	st := openStore(t, path)
	e, err := New(ctx, st, WithIDGenerator(NewFixedGenerator("a", "b")))
	require.NoError(t, err)
	_, err = e.Run(ctx, adderSpec())
	require.NoError(t, err)
	_, err = e.Run(ctx, adderSpec())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2 := openStore(t, path)
	e2, err := New(ctx, st2, WithIDGenerator(NewFixedGenerator("c")))
	require.NoError(t, err)
	assert.Equal(t, int64(2), e2.LastSeq())
	res, err := e2.Run(ctx, adderSpec())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Run.Seq)

	runs, err := st2.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRun_WithoutStore(t *testing.T) {
	ctx := context.Background()
	e, err := New(ctx, nil)
	require.NoError(t, err)

	res, err := e.Run(ctx, adderSpec())
	require.NoError(t, err)
	_, err = uuid.Parse(res.Run.ID)
	assert.NoError(t, err)

	_, err = e.Replay(ctx, res.Run.ID)
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestRun_RecordAll(t *testing.T) {
	ctx := context.Background()
	e, err := New(ctx, nil, WithRecordAll(true))
	require.NoError(t, err)

	res, err := e.Run(ctx, adderSpec())
	require.NoError(t, err)
	assert.True(t, res.Run.RecordAll)
	assert.Greater(t, res.Run.SpikeCount, 1)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e, err := New(ctx, nil)
	require.NoError(t, err)
	cancel()

	_, err = e.Run(ctx, adderSpec())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_AssemblyError(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, ":memory:")
	e, err := New(ctx, st, WithIDGenerator(NewFixedGenerator()))
	require.NoError(t, err)

	spec := adderSpec()
	spec.Bricks[1].Inputs = nil
	_, err = e.Run(ctx, spec)
	require.Error(t, err)

	runs, err := st.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReplay_Matches(t *testing.T) {
	ctx := context.Background()
	st := openStore(t, ":memory:")
	e, err := New(ctx, st, WithIDGenerator(NewFixedGenerator("run-1")))
	require.NoError(t, err)
	_, err = e.Run(ctx, adderSpec())
	require.NoError(t, err)

	res, err := e.Replay(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.True(t, res.Stored.Equal(res.Replayed))

	_, err = e.Replay(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunClock(t *testing.T) {
	c := resumeClock(0)
	assert.Equal(t, int64(1), c.next())
	assert.Equal(t, int64(1), c.last.Load())

	c = resumeClock(10)
	assert.Equal(t, int64(11), c.next())
}

func TestRunClock_Concurrent(t *testing.T) {
	c := resumeClock(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.next()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.last.Load())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	id, err := uuid.Parse(UUIDv7Generator{}.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
