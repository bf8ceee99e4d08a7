package ir

// Version constants for the graph format and engine.
const (
	// GraphVersion is the finalized graph schema version.
	GraphVersion = "1"

	// EngineVersion is the spikeforge simulator version.
	EngineVersion = "0.1.0"
)
