package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_Today(t *testing.T) {
	c := NewSystemClock(time.UTC)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), c.Today().String())
}

func TestSystemClock_ZeroValueUsesLocal(t *testing.T) {
	var c SystemClock
	assert.Equal(t, time.Now().Format("2006-01-02"), c.Today().String())
}

func TestUntilNextDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, loc)
	assert.Equal(t, 90*time.Minute, UntilNextDay(now, loc))

	// Same instant seen from UTC is 20:30, so 3h30m remain there.
	assert.Equal(t, 210*time.Minute, UntilNextDay(now, time.UTC))
}
