package engine

import "sync/atomic"

// runClock hands out run sequence numbers. Seq values are logical: they
// order runs in the log and never carry wall time.
type runClock struct {
	last atomic.Int64
}

// resumeClock returns a clock whose next value is last+1.
func resumeClock(last int64) *runClock {
	c := &runClock{}
	c.last.Store(last)
	return c
}

func (c *runClock) next() int64 {
	return c.last.Add(1)
}

// LastSeq returns the seq of the most recent run, or of the last run in
// the store when no run has happened yet.
func (e *Engine) LastSeq() int64 {
	return e.clock.last.Load()
}
