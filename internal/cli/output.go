package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/query"
	"github.com/regtab/regtab/internal/store"
	"github.com/regtab/regtab/internal/tablit"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (malformed page, record not found, no data)
	ExitCommandError = 2 // Command error (bad flags, unknown collection, backend failures)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Stable error codes for the error payload, one per typed domain error.
// Scripted consumers dispatch on these instead of parsing messages.
const (
	CodeMalformedTable   = "malformed_table"
	CodeRecordNotFound   = "record_not_found"
	CodeDuplicateID      = "duplicate_id"
	CodeMissingParentID  = "missing_parent_id"
	CodeUnknownOp        = "unknown_operation"
	CodeNoData           = "no_data"
	CodeInvalidQuery     = "invalid_query"
	CodeRevisionMismatch = "revision_mismatch"
	CodePageNotFound     = "page_not_found"
	CodeTransport        = "transport_failed"
	CodeCommandError     = "command_error"
	CodeFailure          = "failure"
)

// ErrorCode maps an error to its stable code, looking through ExitError
// and %w wrapping. Errors with no typed domain cause fall back to a code
// derived from the exit class.
func ErrorCode(err error) string {
	var de *query.DescriptorError
	switch {
	case tablit.IsMalformed(err):
		return CodeMalformedTable
	case merge.IsNotFound(err):
		return CodeRecordNotFound
	case merge.IsDuplicateID(err):
		return CodeDuplicateID
	case merge.IsMissingParentID(err):
		return CodeMissingParentID
	case merge.IsUnknownOp(err):
		return CodeUnknownOp
	case query.IsZeroDenominator(err):
		return CodeNoData
	case errors.As(err, &de):
		return CodeInvalidQuery
	case store.IsRevisionMismatch(err):
		return CodeRevisionMismatch
	case store.IsPageNotFound(err):
		return CodePageNotFound
	case store.IsTransport(err):
		return CodeTransport
	}
	if GetExitCode(err) == ExitCommandError {
		return CodeCommandError
	}
	return CodeFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // stable error code
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. In text
// mode the data is printed with %v; commands wanting richer text output
// render it themselves and pass a string.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
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

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}
