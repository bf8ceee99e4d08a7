// Package ir provides the shared data model for spikeforge.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the neuron graph format the single seam between graph construction
// (scaffold), execution (simulator) and persistence (store).
//
// Key design constraints:
//   - Neuron identifiers are dense integers assigned once, at finalization
//   - Time is a discrete integer step, never wall-clock
//   - Canonical JSON forbids floats; float parameters are hashed as strings
//   - All JSON tags use snake_case
package ir
