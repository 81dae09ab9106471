package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/statuslog/internal/config"
	"github.com/roach88/statuslog/internal/store"
	"github.com/roach88/statuslog/internal/validation"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or failed scenarios
	ExitCommandError = 2 // Command error (bad settings, unreadable files, storage failure)
	ExitConflict     = 3 // Commit gave up after repeated version conflicts
)

// Error codes used in CLIResponse.
const (
	CodeValidation = "E001"
	CodeConflict   = "E002"
	CodeCommand    = "E003"
	CodeFailure    = "E004"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// reportedError marks an error whose output the command already wrote.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// GetExitCode extracts the exit code from an error.
//
// Conflicts map to ExitConflict and rejected input to ExitFailure even
// when they are not wrapped in an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case store.IsConflict(err):
		return ExitConflict
	case validation.IsValidationError(err):
		return ExitFailure
	case errors.As(err, &exitErr):
		return exitErr.Code
	}
	var settingsErr *config.Error
	if errors.As(err, &settingsErr) {
		return ExitCommandError
	}
	return ExitFailure
}

// errorCode returns the CLIResponse code for err.
func errorCode(err error) string {
	switch GetExitCode(err) {
	case ExitConflict:
		return CodeConflict
	case ExitCommandError:
		return CodeCommand
	}
	if validation.IsValidationError(err) {
		return CodeValidation
	}
	return CodeFailure
}

// errorDetails returns structured details for err, if any.
func errorDetails(err error) interface{} {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}
	return nil
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs data in JSON mode, or text in text mode.
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	_, err := io.WriteString(f.Writer, text)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %+v\n", details)
	}
	return nil
}

// Report writes err in the configured format and returns its exit code.
// Errors the command has already written are not written again.
func (f *OutputFormatter) Report(err error) int {
	var done *reportedError
	if errors.As(err, &done) {
		return GetExitCode(err)
	}
	_ = f.Error(errorCode(err), err.Error(), errorDetails(err))
	return GetExitCode(err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
