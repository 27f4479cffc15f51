package testutil

import "sync"

// DeterministicClock is a wall clock for tests that ticks a fixed step
// on every reading.
//
// Records stamped through it get predictable timestamps, so golden
// files stay byte-identical between runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start uint64
	step  uint64
	n     uint64
}

// NewDeterministicClock returns a clock whose first reading is start and
// whose readings then advance by step.
func NewDeterministicClock(start, step uint64) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now returns the next timestamp in nanoseconds.
func (c *DeterministicClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start + c.n*c.step
	c.n++
	return t
}

// Readings returns how many times Now has been called.
func (c *DeterministicClock) Readings() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next reading is start again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
