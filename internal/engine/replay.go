package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/spikeforge/internal/simulator"
	"github.com/roach88/spikeforge/internal/spikes"
	"github.com/roach88/spikeforge/internal/store"
)

// ErrNoStore is returned by Replay on an engine without a store.
var ErrNoStore = errors.New("engine has no store")

// ReplayResult compares a stored run with a fresh execution of its graph.
type ReplayResult struct {
	Run      store.Run
	Stored   *spikes.Record
	Replayed *spikes.Record
	Hash     string
	Match    bool
}

// Replay re-executes a stored run from its stored graph. Replays are not
// recorded.
func (e *Engine) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}

	run, err := e.store.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	g, err := e.store.ReadGraph(ctx, run.GraphFingerprint)
	if err != nil {
		return nil, err
	}
	events, err := e.store.ReadSpikes(ctx, runID)
	if err != nil {
		return nil, err
	}

	plan, err := simulator.Compile(g,
		simulator.WithLogger(e.logger),
		simulator.WithRecordAll(run.RecordAll),
	)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	rec, err := plan.Execute(run.Steps)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	hash, err := rec.Hash()
	if err != nil {
		return nil, err
	}

	res := &ReplayResult{
		Run:      run,
		Stored:   spikes.NewRecord(events, run.Steps),
		Replayed: rec,
		Hash:     hash,
		Match:    hash == run.TraceHash,
	}
	e.logger.Info("run replayed", "run_id", runID, "match", res.Match)
	return res, nil
}
