package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "statuslog", cmd.Use)
	assert.Contains(t, cmd.Long, "conflict")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "log", "config", "status", "seasons", "carry-forward", "record", "subject", "history", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestSubjectAlias(t *testing.T) {
	cmd := NewRootCommand()
	subCmd, _, err := cmd.Find([]string{"athlete", "add"})
	require.NoError(t, err)
	assert.Equal(t, "add", subCmd.Name())
	assert.Equal(t, "subject", subCmd.Parent().Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	for _, name := range []string{"backend", "dir", "db"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRecordSetFlags(t *testing.T) {
	cmd := NewRootCommand()
	setCmd, _, err := cmd.Find([]string{"record", "set"})
	require.NoError(t, err)

	status := setCmd.Flags().Lookup("status")
	require.NotNil(t, status)
	assert.Equal(t, "Available", status.DefValue)

	for _, name := range []string{"injury-site", "injury", "severity", "comment"} {
		flag := setCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestServeFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	assert.NotNil(t, serveCmd.Flags().Lookup("listen"))
	assert.NotNil(t, serveCmd.Flags().Lookup("no-schedule"))
}

// run executes the CLI against a file backend in dir.
func run(t *testing.T, dir string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--backend", "file", "--dir", dir}, args...)
	code = Execute(full, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExecute_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := run(t, dir, "subject", "add", "A")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A added\n", out)

	code, out, _ = run(t, dir, "subject", "add", "A")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A already on the roster\n", out)

	code, _, stderr := run(t, dir, "record", "set", "A-2024-01-01", "--status", "Injured", "--injury-site", "Knee", "--comment", "rest, ice")
	require.Equal(t, ExitSuccess, code, stderr)

	code, out, _ = run(t, dir, "carry-forward", "--as-of", "2024-01-01")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "1 entries added for 2024-01-02")
	assert.Contains(t, out, "A-2024-01-02 Injured")

	code, out, _ = run(t, dir, "carry-forward", "--as-of", "2024-01-01")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "0 entries added")

	want := "key,status,injurySite,injury,severity,comment\n" +
		"A-2024-01-01,Injured,Knee,,,rest, ice\n" +
		"A-2024-01-02,Injured,Knee,,,rest, ice\n"

	code, out, _ = run(t, dir, "log")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, want, out)

	raw, err := os.ReadFile(filepath.Join(dir, "log.csv"))
	require.NoError(t, err)
	assert.Equal(t, want, string(raw))

	code, out, _ = run(t, dir, "status", "A", "--date", "2024-01-10")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "A on 2024-01-10: Injured")
	assert.Contains(t, out, "from:        A-2024-01-02")

	code, out, _ = run(t, dir, "subject", "remove", "A")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A removed, 2 log entries deleted\n", out)
}

func TestExecute_JSON(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := run(t, dir, "--format", "json", "subject", "add", "B")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Subject       string `json:"subject"`
			RosterChanged bool   `json:"rosterChanged"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "B", resp.Data.Subject)
	assert.True(t, resp.Data.RosterChanged)
}

func TestExecute_ValidationError(t *testing.T) {
	dir := t.TempDir()

	code, out, stderr := run(t, dir, "record", "set", "A-2024-01-01", "--status", "Sleeping")
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Error [E001]")

	code, out, _ = run(t, dir, "--format", "json", "record", "set", "not-a-key")
	assert.Equal(t, ExitFailure, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)

	_, err := os.Stat(filepath.Join(dir, "log.csv"))
	assert.True(t, os.IsNotExist(err), "rejected writes leave no log behind")
}

func TestExecute_CommandErrors(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := run(t, dir, "--format", "xml", "log")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")

	code, _, stderr = run(t, dir, "--config", filepath.Join(dir, "missing.yaml"), "log")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")

	code, _, _ = run(t, dir, "history")
	assert.Equal(t, ExitCommandError, code, "history needs the sqlite backend")
}
