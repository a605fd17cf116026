// Package atomic_counter gives the training loop a lock-free shared
// counter, used for the replay buffer's occupancy, so the dashboard can
// read live progress without contending with training goroutines. A
// float64 counter would need a bit-reinterpret compare-and-swap loop
// (float64 has no native atomic type), but a plain int64 already has one in
// sync/atomic, so no unsafe pointer games are needed here.
package atomic_counter

import "sync/atomic"

// Counter encapsulates an int64 for non-locking concurrent reads and
// updates.
type Counter struct {
	val atomic.Int64
}

// NewCounter returns a Counter initialized to val.
func NewCounter(val int64) *Counter {
	c := &Counter{}
	c.val.Store(val)
	return c
}

// AtomicRead returns the current value, synchronized with main memory.
func (c *Counter) AtomicRead() int64 {
	return c.val.Load()
}

// AtomicAdd adds addend and returns the new value.
func (c *Counter) AtomicAdd(addend int64) int64 {
	return c.val.Add(addend)
}

// AtomicSet overwrites the value unconditionally.
func (c *Counter) AtomicSet(newVal int64) {
	c.val.Store(newVal)
}
