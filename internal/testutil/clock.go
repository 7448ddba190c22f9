// Package testutil holds deterministic stand-ins for the engine's clock
// and session generator, shared by package tests and the scenario harness.
package testutil

import "sync"

// DeterministicClock is a resettable logical clock satisfying
// engine.SeqClock. The harness gives each scenario run a fresh one, so
// every run of a scenario stamps identical seq values and golden traces
// stay byte-stable.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock whose first Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock so the next Next() returns 1 again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
