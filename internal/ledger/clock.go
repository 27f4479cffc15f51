package ledger

import (
	"sync"
	"time"
)

// Clock stamps records with creation times in nanoseconds since the
// Unix epoch.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock but never goes backwards: a reading
// that is not after the previous one is bumped to previous+1. Records
// created in one process therefore carry strictly increasing stamps.
type SystemClock struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewSystemClock returns a SystemClock over time.Now.
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns the current time.
func (c *SystemClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := uint64(c.now().UnixNano())
	if t <= c.last {
		t = c.last + 1
	}
	c.last = t
	return t
}
