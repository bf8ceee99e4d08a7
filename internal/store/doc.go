// Package store provides SQLite-backed storage for finalized graphs and
// simulation runs.
//
// The store is an append-only log with:
//   - Graphs: finalized neuron graphs keyed by content fingerprint
//   - Runs: one record per simulation run, ordered by a logical seq
//   - Spikes: the recorded spike events of each run
//
// # Deterministic Query Results
//
// Every multi-row query has a total order: runs by seq ASC, id ASC COLLATE
// BINARY; spikes by step ASC, neuron_id ASC. Reading a run back yields the
// same event sequence the simulator produced.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: Spikes and runs must reference existing rows
package store
