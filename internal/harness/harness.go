package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/statuslog/internal/ir"
	"github.com/roach88/statuslog/internal/roster"
	"github.com/roach88/statuslog/internal/service"
	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/testutil"
	"github.com/roach88/statuslog/internal/update"
	"github.com/roach88/statuslog/internal/validation"
)

// Harness actions that are not part of the service surface.
const (
	ActionAdvanceClock  = "advance-clock"
	ActionExternalWrite = "external-write"
	ActionContend       = "contend"
)

// outcome is what an action reports back to the runner.
type outcome struct {
	changed  bool
	attempts int
}

type actionFunc func(ctx context.Context, h *Harness, args *yaml.Node) (outcome, error)

var actions = map[string]actionFunc{
	"add-subject":       addSubject,
	"remove-subject":    removeSubject,
	"update-record":     updateRecord,
	"merge-records":     mergeRecords,
	"update-seasons":    updateSeasons,
	"carry-forward":     carryForward,
	ActionAdvanceClock:  advanceClock,
	ActionExternalWrite: externalWrite,
	ActionContend:       contend,
}

// Harness is the scenario execution environment: a fresh in-memory store,
// a fixed clock and a service wired over them.
type Harness struct {
	store *contendingStore
	clock *testutil.FixedClock
	ids   *testutil.SequenceIDs
	svc   *service.Service
}

// New builds a harness for scenario. The scenario must have been validated.
func New(scenario *Scenario) *Harness {
	mem := &contendingStore{Memory: store.NewMemory(), pending: make(map[string]int)}
	clock := testutil.NewFixedClock(scenario.Today)
	ids := &testutil.SequenceIDs{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := []update.Option{
		update.WithBackoff(0),
		update.WithLogger(logger),
		update.WithIDGenerator(ids.Next),
	}
	if scenario.MaxAttempts > 0 {
		opts = append(opts, update.WithMaxAttempts(scenario.MaxAttempts))
	}
	svc := service.New(update.New(mem, opts...), service.Options{
		LookbackDays: scenario.LookbackDays,
		Clock:        clock,
		Logger:       logger,
	})
	return &Harness{store: mem, clock: clock, ids: ids, svc: svc}
}

// Service returns the service the harness drives.
func (h *Harness) Service() *service.Service {
	return h.svc
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store. Setup blobs are
// written first, then steps run in order and assertions are checked
// against the final state. A returned error means the scenario itself
// could not be executed; failed expectations are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	h := New(scenario)
	result := NewResult()

	for path, content := range scenario.Setup {
		if err := h.write(ctx, path, []byte(content)); err != nil {
			return nil, fmt.Errorf("setup %s: %w", path, err)
		}
	}

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		out, err := actions[step.Action](ctx, h, &step.Args)
		var argErr *argsError
		if errors.As(err, &argErr) {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Action, err)
		}

		sr := StepResult{Index: i, Action: step.Action, Changed: out.changed, Attempts: out.attempts}
		if err != nil {
			sr.Error = err.Error()
		}
		result.Steps = append(result.Steps, sr)

		if msg := checkExpect(step.Expect, out, err); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Action, msg))
		}
	}

	for i := range scenario.Assertions {
		if err := h.check(ctx, &scenario.Assertions[i]); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	paths := h.svc.Paths()
	if err := result.snapshot(ctx, h.store, paths.Log, paths.Roster, paths.Seasons); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return result, nil
}

// checkExpect compares a step's outcome against its expect clause and
// returns a failure message, or "" if it matched.
func checkExpect(expect *ExpectClause, out outcome, err error) string {
	want := ""
	if expect != nil {
		want = expect.Error
	}
	switch {
	case want == "" && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case want != "" && err == nil:
		return fmt.Sprintf("expected %s error, step succeeded", want)
	case want == ErrorValidation && !validation.IsValidationError(err):
		return fmt.Sprintf("expected validation error, got: %v", err)
	case want == ErrorConflict && !store.IsConflict(err):
		return fmt.Sprintf("expected conflict error, got: %v", err)
	}
	if err == nil && expect != nil && expect.Changed != nil && *expect.Changed != out.changed {
		return fmt.Sprintf("expected changed=%t, got changed=%t", *expect.Changed, out.changed)
	}
	return ""
}

// write replaces path unconditionally, bypassing the coordinator.
func (h *Harness) write(ctx context.Context, path string, content []byte) error {
	var expected store.Version
	blob, err := h.store.Get(ctx, path)
	switch {
	case err == nil:
		expected = blob.Version
	case !store.IsNotFound(err):
		return err
	}
	_, err = h.store.Memory.Put(ctx, path, content, expected)
	return err
}

// argsError marks a step whose args could not be decoded.
type argsError struct {
	err error
}

func (e *argsError) Error() string { return "invalid args: " + e.err.Error() }
func (e *argsError) Unwrap() error { return e.err }

// decodeArgs decodes a step's args node into v. Absent args leave v
// untouched.
func decodeArgs(node *yaml.Node, v any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	if err := node.Decode(v); err != nil {
		return &argsError{err: err}
	}
	return nil
}

func subjectArgs(node *yaml.Node) (string, error) {
	var args struct {
		Subject string `yaml:"subject"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return "", err
	}
	return args.Subject, nil
}

func fromResult(res update.Result) outcome {
	return outcome{changed: res.Changed, attempts: res.Attempts}
}

func addSubject(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	name, err := subjectArgs(node)
	if err != nil {
		return outcome{}, err
	}
	res, err := h.svc.AddSubject(ctx, name)
	return fromResult(res.Roster), err
}

func removeSubject(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	name, err := subjectArgs(node)
	if err != nil {
		return outcome{}, err
	}
	res, err := h.svc.RemoveSubject(ctx, name)
	out := fromResult(res.Roster)
	if res.Log != nil {
		out.changed = out.changed || res.Log.Changed
		out.attempts += res.Log.Attempts
	}
	return out, err
}

func updateRecord(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	var args struct {
		Key    string    `yaml:"key"`
		Record ir.Record `yaml:"record"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	res, err := h.svc.UpdateRecord(ctx, args.Key, args.Record)
	return fromResult(res), err
}

func mergeRecords(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	var args struct {
		Entries []ir.Entry `yaml:"entries"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	res, err := h.svc.MergeRecords(ctx, args.Entries)
	return fromResult(res), err
}

func updateSeasons(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	var args struct {
		Seasons []struct {
			Name  string `yaml:"name"`
			Start string `yaml:"start"`
			End   string `yaml:"end"`
		} `yaml:"seasons"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	seasons := make([]roster.Season, 0, len(args.Seasons))
	for _, s := range args.Seasons {
		start, err := ir.ParseDate(s.Start)
		if err != nil {
			return outcome{}, &argsError{err: err}
		}
		end, err := ir.ParseDate(s.End)
		if err != nil {
			return outcome{}, &argsError{err: err}
		}
		seasons = append(seasons, roster.Season{Name: s.Name, Start: start, End: end})
	}
	res, err := h.svc.UpdateSeasons(ctx, seasons)
	return fromResult(res), err
}

func carryForward(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	var args struct {
		AsOf string `yaml:"as_of"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	if args.AsOf == "" {
		res, err := h.svc.CarryForwardToday(ctx)
		return fromResult(res.Result), err
	}
	asOf, err := ir.ParseDate(args.AsOf)
	if err != nil {
		return outcome{}, &argsError{err: err}
	}
	res, err := h.svc.CarryForward(ctx, asOf)
	return fromResult(res.Result), err
}

func advanceClock(_ context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	args := struct {
		Days int `yaml:"days"`
	}{Days: 1}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	h.clock.Advance(args.Days)
	return outcome{changed: args.Days != 0}, nil
}

func externalWrite(ctx context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	var args struct {
		Path    string `yaml:"path"`
		Content string `yaml:"content"`
	}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	if args.Path == "" {
		return outcome{}, &argsError{err: fmt.Errorf("path is required")}
	}
	return outcome{changed: true}, h.write(ctx, args.Path, []byte(args.Content))
}

func contend(_ context.Context, h *Harness, node *yaml.Node) (outcome, error) {
	args := struct {
		Path  string `yaml:"path"`
		Times int    `yaml:"times"`
	}{Times: 1}
	if err := decodeArgs(node, &args); err != nil {
		return outcome{}, err
	}
	if args.Path == "" {
		return outcome{}, &argsError{err: fmt.Errorf("path is required")}
	}
	h.store.arm(args.Path, args.Times)
	return outcome{}, nil
}

// contendingStore is a memory adapter that can be armed to lose the next
// n conditional writes to a path: before each of them another writer
// rewrites the blob, so the caller's expected version is stale.
type contendingStore struct {
	*store.Memory

	mu      sync.Mutex
	pending map[string]int
}

func (c *contendingStore) arm(path string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[path] += n
}

func (c *contendingStore) take(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[path] <= 0 {
		return false
	}
	c.pending[path]--
	return true
}

// Put implements store.Adapter.
func (c *contendingStore) Put(ctx context.Context, path string, content []byte, expected store.Version) (store.Version, error) {
	if c.take(path) {
		var cur store.Version
		var body []byte
		blob, err := c.Memory.Get(ctx, path)
		switch {
		case err == nil:
			cur, body = blob.Version, blob.Content
		case !store.IsNotFound(err):
			return "", err
		}
		if _, err := c.Memory.Put(ctx, path, body, cur); err != nil {
			return "", err
		}
	}
	return c.Memory.Put(ctx, path, content, expected)
}
