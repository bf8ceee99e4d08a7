package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
)

// Run is the persisted record of one simulation run.
type Run struct {
	ID               string `json:"id"`
	Seq              int64  `json:"seq"`
	Circuit          string `json:"circuit"`
	GraphFingerprint string `json:"graph_fingerprint"`
	Steps            int    `json:"steps"`
	RecordAll        bool   `json:"record_all"`
	SpikeCount       int    `json:"spike_count"`
	TraceHash        string `json:"trace_hash"`
	EngineVersion    string `json:"engine_version"`
}

// WriteGraph stores a finalized graph and returns its fingerprint.
// Uses ON CONFLICT DO NOTHING: writing the same graph twice is a no-op.
func (s *Store) WriteGraph(ctx context.Context, g *ir.Graph) (string, error) {
	fp, err := ir.Fingerprint(g)
	if err != nil {
		return "", fmt.Errorf("write graph: %w", err)
	}
	body, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("write graph: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphs (fingerprint, graph_version, neurons, synapses, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, fp, ir.GraphVersion, len(g.Neurons), len(g.Synapses), string(body))
	if err != nil {
		return "", fmt.Errorf("write graph: %w", err)
	}
	return fp, nil
}

// WriteRun stores a run and its spike events in one transaction.
// SpikeCount is taken from events. The run's graph must already be stored.
func (s *Store) WriteRun(ctx context.Context, run Run, events []ir.SpikeEvent) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, circuit, graph_fingerprint, steps, record_all, spike_count, trace_hash, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.Circuit,
		run.GraphFingerprint,
		run.Steps,
		run.RecordAll,
		len(events),
		run.TraceHash,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO spikes (run_id, step, neuron_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write run: prepare spikes: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err = stmt.ExecContext(ctx, run.ID, e.Step, e.Neuron); err != nil {
			return fmt.Errorf("write run: spike (%d, %d): %w", e.Step, e.Neuron, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
