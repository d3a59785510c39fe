package mirror

import "sync/atomic"

// Clock stamps each batch with a strictly increasing logical seq.
// Wall-clock time is never used for ordering.
type Clock interface {
	Next() int64
}

// LogicalClock is the default Clock.
//
// Thread-safety: safe for concurrent use (atomic operations), although only
// the Run goroutine calls Next.
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClock creates a clock whose first Next returns 1.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a clock resuming after start.
// Used when a mirror is rebuilt from a snapshot taken at a known seq.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
