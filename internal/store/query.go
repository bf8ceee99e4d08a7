package store

import (
	"context"
	"fmt"

	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/queryir"
	"github.com/roach88/spikeforge/internal/querysql"
)

// ListRuns returns every run ordered by seq ASC, id ASC COLLATE BINARY.
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.QueryRuns(ctx, nil)
}

// QueryRuns returns the runs matching filter, in seq order. A nil filter
// matches every run.
func (s *Store) QueryRuns(ctx context.Context, filter queryir.Predicate) ([]Run, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(queryir.Select{
		From:   queryir.TableRuns,
		Filter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("compile run query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSpikes returns the spikes of a run ordered by step ASC, neuron_id ASC.
// Returns an empty slice (not nil) if the run recorded no spikes.
func (s *Store) ReadSpikes(ctx context.Context, runID string) ([]ir.SpikeEvent, error) {
	return s.QuerySpikes(ctx, runID, nil)
}

// QuerySpikes returns the spikes of a run matching filter, ordered by
// step then neuron. Filter fields are those of queryir.TableSpikes.
func (s *Store) QuerySpikes(ctx context.Context, runID string, filter queryir.Predicate) ([]ir.SpikeEvent, error) {
	preds := []queryir.Predicate{queryir.Equals{Field: "run_id", Value: runID}}
	if filter != nil {
		preds = append(preds, filter)
	}

	query, params, err := querysql.NewSQLCompiler().Compile(queryir.Select{
		From:   queryir.TableSpikes,
		Fields: []string{"step", "neuron_id"},
		Filter: queryir.And{Predicates: preds},
	})
	if err != nil {
		return nil, fmt.Errorf("compile spike query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query spikes: %w", err)
	}
	defer rows.Close()

	events := []ir.SpikeEvent{}
	for rows.Next() {
		var e ir.SpikeEvent
		if err := rows.Scan(&e.Step, &e.Neuron); err != nil {
			return nil, fmt.Errorf("scan spike: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spikes: %w", err)
	}
	return events, nil
}
