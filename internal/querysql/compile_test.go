package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikeforge/internal/queryir"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		query  queryir.Query
		sql    string
		params []any
	}{
		{
			name:  "all runs",
			query: queryir.Select{From: queryir.TableRuns},
			sql: "SELECT id, seq, circuit, graph_fingerprint, steps, record_all, spike_count, trace_hash, engine_version " +
				"FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC",
		},
		{
			name: "runs of a circuit",
			query: &queryir.Select{
				From:   queryir.TableRuns,
				Fields: []string{"id"},
				Filter: queryir.Equals{Field: "circuit", Value: "adder"},
				Limit:  5,
			},
			sql:    "SELECT id FROM runs WHERE circuit = ? ORDER BY seq ASC, id COLLATE BINARY ASC LIMIT ?",
			params: []any{"adder", int64(5)},
		},
		{
			name: "spikes of a run in a window",
			query: queryir.Select{
				From:   queryir.TableSpikes,
				Fields: []string{"step", "neuron_id"},
				Filter: queryir.And{Predicates: []queryir.Predicate{
					queryir.Equals{Field: "run_id", Value: "run-1"},
					queryir.Range{Field: "step", Min: queryir.Bound(10), Max: queryir.Bound(20)},
					&queryir.In{Field: "neuron_id", Values: []int64{3, 9}},
				}},
			},
			sql: "SELECT step, neuron_id FROM spikes " +
				"WHERE (run_id = ?) AND (step BETWEEN ? AND ?) AND (neuron_id IN (?, ?)) " +
				"ORDER BY run_id COLLATE BINARY ASC, step ASC, neuron_id ASC",
			params: []any{"run-1", int64(10), int64(20), int64(3), int64(9)},
		},
		{
			name:   "open ranges",
			query:  queryir.Select{From: queryir.TableSpikes, Fields: []string{"step"}, Filter: queryir.Range{Field: "step", Max: queryir.Bound(4)}},
			sql:    "SELECT step FROM spikes WHERE step <= ? ORDER BY run_id COLLATE BINARY ASC, step ASC, neuron_id ASC",
			params: []any{int64(4)},
		},
		{
			name:   "lower bound",
			query:  queryir.Select{From: queryir.TableSpikes, Fields: []string{"step"}, Filter: queryir.Range{Field: "step", Min: queryir.Bound(4)}},
			sql:    "SELECT step FROM spikes WHERE step >= ? ORDER BY run_id COLLATE BINARY ASC, step ASC, neuron_id ASC",
			params: []any{int64(4)},
		},
		{
			name:  "empty set",
			query: queryir.Select{From: queryir.TableSpikes, Fields: []string{"step"}, Filter: queryir.In{Field: "neuron_id"}},
			sql:   "SELECT step FROM spikes WHERE 0 = 1 ORDER BY run_id COLLATE BINARY ASC, step ASC, neuron_id ASC",
		},
		{
			name:  "empty and",
			query: queryir.Select{From: queryir.TableRuns, Fields: []string{"id"}, Filter: queryir.And{}},
			sql:   "SELECT id FROM runs WHERE 1 = 1 ORDER BY seq ASC, id COLLATE BINARY ASC",
		},
		{
			name:   "int and bool literals",
			query:  queryir.Select{From: queryir.TableRuns, Fields: []string{"id"}, Filter: queryir.And{Predicates: []queryir.Predicate{queryir.Equals{Field: "steps", Value: 50}, queryir.Equals{Field: "record_all", Value: true}}}},
			sql:    "SELECT id FROM runs WHERE (steps = ?) AND (record_all = ?) ORDER BY seq ASC, id COLLATE BINARY ASC",
			params: []any{int64(50), true},
		},
	}

	c := NewSQLCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := c.Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompile_RejectsInvalid(t *testing.T) {
	c := NewSQLCompiler()

	_, _, err := c.Compile(queryir.Select{From: "graphs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "graphs"`)

	_, _, err = c.Compile(queryir.Select{From: queryir.TableSpikes, Filter: queryir.Equals{Field: "step", Value: 1.5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported literal float64")

	_, _, err = c.Compile(nil)
	require.Error(t, err)
}

func TestCompile_Deterministic(t *testing.T) {
	q := queryir.Select{
		From: queryir.TableSpikes,
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "run_id", Value: "r"},
			queryir.In{Field: "neuron_id", Values: []int64{5, 1, 3}},
		}},
	}
	c := NewSQLCompiler()
	first, p1, err := c.Compile(q)
	require.NoError(t, err)
	for range 10 {
		sql, p, err := c.Compile(q)
		require.NoError(t, err)
		assert.Equal(t, first, sql)
		assert.Equal(t, p1, p)
	}
}
