package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the final blobs of a run as one text document: a
// "# <path>" header per blob followed by its content, in the order given.
// Blobs that were never written are rendered as "# <path> (missing)".
func (r *Result) Snapshot(paths ...string) []byte {
	var buf bytes.Buffer
	for _, p := range paths {
		content, ok := r.Blobs[p]
		if !ok {
			fmt.Fprintf(&buf, "# %s (missing)\n", p)
			continue
		}
		fmt.Fprintf(&buf, "# %s\n", p)
		buf.Write(content)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// SnapshotPaths are the blobs included in golden snapshots.
var SnapshotPaths = []string{"log.csv", "roster.csv", "seasons.csv"}

// RunWithGolden executes a scenario, fails t on any step or assertion
// failure and compares the final blobs against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Snapshot(SnapshotPaths...))
	return nil
}
