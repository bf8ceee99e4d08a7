package testutil

import (
	"fmt"

	"github.com/roach88/spikeforge/internal/engine"
)

// FixedRunIDs returns a generator yielding run-0001 through run-<n>.
func FixedRunIDs(n int) *engine.FixedGenerator {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("run-%04d", i+1)
	}
	return engine.NewFixedGenerator(ids...)
}
