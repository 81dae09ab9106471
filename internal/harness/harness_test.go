package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statuslog/internal/store"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectations
description: every expectation here is wrong
today: "2024-01-02"
steps:
  - action: add-subject
    args: {subject: A}
    expect: {changed: false}
  - action: add-subject
    args: {subject: "a,b"}
  - action: update-record
    args: {key: A-2024-01-01, record: {status: Available}}
    expect: {error: conflict}
assertions:
  - type: entries
    count: 5
  - type: roster
    subjects: [B]
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "expected changed=false, got changed=true")
	assert.Contains(t, result.Errors[1], "unexpected error")
	assert.Contains(t, result.Errors[2], "expected conflict error, step succeeded")
	assert.Contains(t, result.Errors[3], "1 entries")
	assert.Contains(t, result.Errors[4], `["A"]`)

	require.Len(t, result.Steps, 3)
	assert.NotEmpty(t, result.Steps[1].Error)
	assert.Equal(t, 1, result.Steps[2].Attempts)
}

func TestRun_BadArgsAbortScenario(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad_args
description: carry-forward with a malformed date
today: "2024-01-02"
steps:
  - action: carry-forward
    args: {as_of: "yesterday"}
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0] (carry-forward)")
}

func TestRun_StatusDefaultsToToday(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: status_default
description: a subject with no history resolves to Available
today: "2024-06-01"
steps:
  - action: add-subject
    args: {subject: Zed}
assertions:
  - type: status
    subject: Zed
    expect: {status: Available}
  - type: entries
    count: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "# log.csv (missing)\n", string(result.Snapshot("log.csv")))
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\nstep: []\n",
			want: "field step not found",
		},
		{
			name: "missing today",
			yaml: "name: x\ndescription: d\nsteps: [{action: add-subject}]\n",
			want: "today",
		},
		{
			name: "unknown action",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\nsteps: [{action: fly}]\n",
			want: `unknown action "fly"`,
		},
		{
			name: "unknown error kind",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\nsteps: [{action: add-subject, expect: {error: boom}}]\n",
			want: `unknown error kind "boom"`,
		},
		{
			name: "record without expect",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\nsteps: [{action: add-subject}]\nassertions: [{type: record, key: A-2024-01-01}]\n",
			want: "key and expect are required",
		},
		{
			name: "roster without subjects",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\nsteps: [{action: add-subject}]\nassertions: [{type: roster}]\n",
			want: "subjects is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: d\ntoday: \"2024-01-01\"\n",
			want: "steps list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestContendingStore(t *testing.T) {
	ctx := context.Background()
	c := &contendingStore{Memory: store.NewMemory(), pending: make(map[string]int)}

	v1, err := c.Put(ctx, "a", []byte("one"), "")
	require.NoError(t, err)

	c.arm("a", 1)
	_, err = c.Put(ctx, "a", []byte("two"), v1)
	require.True(t, store.IsConflict(err))

	blob, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", string(blob.Content), "interfering write keeps content")
	assert.NotEqual(t, v1, blob.Version)

	_, err = c.Put(ctx, "a", []byte("two"), blob.Version)
	require.NoError(t, err, "armed count is spent")
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Type: AssertRecord, Target: "A-2024-01-01", Expected: "x", Actual: "y"}
	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "record A-2024-01-01 failed", lines[0])
}
