package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
)

const runColumns = `id, seq, circuit, graph_fingerprint, steps, record_all, spike_count, trace_hash, engine_version`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	err := row.Scan(
		&r.ID,
		&r.Seq,
		&r.Circuit,
		&r.GraphFingerprint,
		&r.Steps,
		&r.RecordAll,
		&r.SpikeCount,
		&r.TraceHash,
		&r.EngineVersion,
	)
	return r, err
}

// ReadRun returns the run with the given ID, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

// ReadGraph returns the graph with the given fingerprint, or ErrNotFound.
func (s *Store) ReadGraph(ctx context.Context, fingerprint string) (*ir.Graph, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM graphs WHERE fingerprint = ?`, fingerprint).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("graph %q: %w", fingerprint, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var g ir.Graph
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		return nil, fmt.Errorf("decode graph %q: %w", fingerprint, err)
	}
	return &g, nil
}

// LastSeq returns the highest run seq, or 0 if there are no runs.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return seq.Int64, nil
}
