// Package engine runs circuits and records the results.
//
// The engine assembles a circuit definition, executes it, and appends the
// finalized graph and spike record to the store. Runs are stamped with a
// logical seq that resumes after the last stored run, never wall time,
// so the run log orders identically however fast runs happen.
//
// Replay re-executes a stored run from its stored graph and compares the
// resulting trace hash with the recorded one. Because execution is
// deterministic, a mismatch means the graph or the simulator changed.
package engine
