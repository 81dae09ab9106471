package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates "op-1", "op-2", ... for update.WithIDGenerator,
// so commit logs are reproducible in tests.
//
// Thread-safety: safe for concurrent use.
type SequenceIDs struct {
	mu  sync.Mutex
	seq int64
}

// Next returns the next id.
func (g *SequenceIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("op-%d", g.seq)
}

// Reset restarts the sequence at op-1.
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
