package engine

import (
	"time"

	"github.com/roach88/statuslog/internal/ir"
)

// Clock supplies the current calendar date.
// Inject a fixed clock in tests for deterministic carry-forward.
type Clock interface {
	Today() ir.Date
}

// SystemClock reads the wall clock in a fixed location.
//
// Thread-safety: SystemClock is immutable and safe for concurrent use.
type SystemClock struct {
	Location *time.Location
}

// NewSystemClock returns a clock for loc; nil means time.Local.
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return SystemClock{Location: loc}
}

// Today returns the current date in the clock's location.
func (c SystemClock) Today() ir.Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return ir.DateOf(time.Now().In(loc))
}

// UntilNextDay returns the duration until the next midnight in loc.
func UntilNextDay(now time.Time, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return next.Sub(now)
}
