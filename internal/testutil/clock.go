package testutil

import (
	"sync"

	"github.com/roach88/statuslog/internal/ir"
)

// FixedClock is an engine.Clock that returns a settable date.
//
// Unlike engine.SystemClock, FixedClock only moves when told to, so
// carry-forward runs in tests are deterministic.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	today ir.Date
}

// NewFixedClock returns a clock reporting the given YYYY-MM-DD date.
// It panics on a malformed date.
func NewFixedClock(date string) *FixedClock {
	return &FixedClock{today: ir.MustParseDate(date)}
}

// Today implements engine.Clock.
func (c *FixedClock) Today() ir.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Set moves the clock to d.
func (c *FixedClock) Set(d ir.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = d
}

// Advance moves the clock n days forward (n may be negative) and returns
// the new date.
func (c *FixedClock) Advance(n int) ir.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = c.today.AddDays(n)
	return c.today
}
