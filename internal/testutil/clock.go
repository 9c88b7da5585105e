// Package testutil provides deterministic fakes for catalog tests: a
// fixed clock, a sequential id generator, and an in-memory document
// store that records every operation for trace assertions.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// FixedClock returns a predetermined time, advancing by Step on each
// call so created/updated stamps are distinct but reproducible.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFixedClock creates a clock pinned at start.
func NewFixedClock(start time.Time) *FixedClock {
	return &FixedClock{now: start}
}

// Now returns the current fixed time, then advances it by Step.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// SequentialIDs generates "prefix-1", "prefix-2", ... Deterministic ids
// keep golden traces stable across runs.
type SequentialIDs struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

// Generate returns the next id in the sequence.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}
