package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/ir"
)

var _ engine.Clock = (*FixedClock)(nil)

func TestFixedClock_Today(t *testing.T) {
	clock := NewFixedClock("2024-02-28")
	assert.Equal(t, "2024-02-28", clock.Today().String())
	assert.Equal(t, "2024-02-28", clock.Today().String(), "reading does not advance")
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock("2024-02-28")

	assert.Equal(t, "2024-02-29", clock.Advance(1).String())
	assert.Equal(t, "2024-03-01", clock.Advance(1).String())
	assert.Equal(t, "2024-02-28", clock.Advance(-2).String())
}

func TestFixedClock_Set(t *testing.T) {
	clock := NewFixedClock("2024-01-01")
	clock.Set(ir.MustParseDate("2025-06-15"))
	assert.Equal(t, "2025-06-15", clock.Today().String())
}

func TestFixedClock_ConcurrentAccess(t *testing.T) {
	clock := NewFixedClock("2024-01-01")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				clock.Advance(1)
				_ = clock.Today()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "2024-04-10", clock.Today().String())
}

func TestSequenceIDs(t *testing.T) {
	var ids SequenceIDs
	assert.Equal(t, "op-1", ids.Next())
	assert.Equal(t, "op-2", ids.Next())

	ids.Reset()
	assert.Equal(t, "op-1", ids.Next())
}
