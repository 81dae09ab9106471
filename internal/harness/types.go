package harness

import (
	"context"

	"github.com/roach88/statuslog/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Steps records what each step did, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Blobs holds the final content of every stored blob by path.
	Blobs map[string][]byte `json:"-"`
}

// StepResult describes one executed step.
type StepResult struct {
	Index   int    `json:"index"`
	Action  string `json:"action"`
	Changed bool   `json:"changed"`

	// Attempts is the number of commit attempts, 0 for steps that do not
	// go through the coordinator.
	Attempts int `json:"attempts,omitempty"`

	// Error is the step's error message, if any.
	Error string `json:"error,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
		Blobs:  make(map[string][]byte),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// snapshot copies the listed blobs out of adapter into r.Blobs.
// Missing blobs are skipped.
func (r *Result) snapshot(ctx context.Context, adapter store.Adapter, paths ...string) error {
	for _, p := range paths {
		blob, err := adapter.Get(ctx, p)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		r.Blobs[p] = blob.Content
	}
	return nil
}
