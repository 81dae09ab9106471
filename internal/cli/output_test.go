package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statuslog/internal/config"
	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/validation"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"result": "success"}, "ignored\n")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(struct{}{}, "done\n"))
	assert.Equal(t, "done\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(CodeConflict, "gave up", map[string]string{"path": "log.csv"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeConflict, resp.Error.Code)
	assert.Equal(t, "gave up", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	require.NoError(t, formatter.Error(CodeCommand, "bad flag", nil))
	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E003]: bad flag\n", errOut.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String(), "verbose output never corrupts JSON on stdout")
}

func TestGetExitCode(t *testing.T) {
	conflict := &store.ConflictError{Path: "log.csv", Expected: "1", Actual: "2"}
	invalid := &validation.Error{Subject: "key", Fields: []validation.FieldError{{Field: "key", Reason: "bad"}}}

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, ExitSuccess},
		{"conflict", conflict, ExitConflict},
		{"wrapped conflict", fmt.Errorf("statuslog log: %w", conflict), ExitConflict},
		{"validation", fmt.Errorf("x: %w", invalid), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "boom"), ExitCommandError},
		{"settings", &config.Error{Message: "backend"}, ExitCommandError},
		{"reported", &reportedError{err: NewExitError(ExitFailure, "2 failed")}, ExitFailure},
		{"plain", errors.New("disk on fire"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetExitCode(tt.err))
		})
	}
}

func TestReport(t *testing.T) {
	out := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out}

	code := formatter.Report(fmt.Errorf("statuslog record set: %w", &store.ConflictError{Path: "log.csv"}))
	assert.Equal(t, ExitConflict, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, CodeConflict, resp.Error.Code)

	out.Reset()
	code = formatter.Report(&reportedError{err: NewExitError(ExitFailure, "already printed")})
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, out.String())
}
