// Package errors defines the stable error code system for curator.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract: scripts match on these.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"

	// Validation
	EInvalidStatus Code = "E_INVALID_STATUS" // status not in the allowed set
	EInvalidDays   Code = "E_INVALID_DAYS"   // keep requires a positive day count
	EInvalidName   Code = "E_INVALID_NAME"   // rename target is not a bare file name
	EInvalidRules  Code = "E_INVALID_RULES"  // rules file is not a JSON rule list
	EInvalidConfig Code = "E_INVALID_CONFIG" // config.yaml failed strict decoding or validation
	ENoFiles       Code = "E_NO_FILES"       // batch command received no file names

	// Not found
	EFileNotFound  Code = "E_FILE_NOT_FOUND"  // path absent from the repository
	ETrashNotFound Code = "E_TRASH_NOT_FOUND" // name absent from the trash directory
	ERepoNotFound  Code = "E_REPO_NOT_FOUND"  // repository root missing or not a directory
	ENothingToUndo Code = "E_NOTHING_TO_UNDO" // journal has no undoable action

	// Collision
	ENameExists Code = "E_NAME_EXISTS" // destination already exists; nothing was touched

	// Fatal I/O
	EPersistFailed Code = "E_PERSIST_FAILED" // state file could not be written
	ELockFailed    Code = "E_LOCK_FAILED"    // lock file could not be opened or locked
	ETrashFailed   Code = "E_TRASH_FAILED"   // move into/out of trash failed
	ERenameFailed  Code = "E_RENAME_FAILED"  // filesystem rename failed

	// Interaction
	EConfirmationRequired Code = "E_CONFIRMATION_REQUIRED" // destructive command run without --yes
	EAborted              Code = "E_ABORTED"               // user declined the prompt
)

// CuratorError is the standard error type for curator errors.
type CuratorError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *CuratorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *CuratorError) Unwrap() error {
	return e.Cause
}

// Reported marks an error whose output was already written by the command
// (for example a JSON batch summary). main only sets the exit code.
type Reported struct {
	Code int
}

func (e *Reported) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *Reported) ExitCode() int {
	return e.Code
}

// New creates a new CuratorError with the given code and message.
func New(code Code, msg string) error {
	return &CuratorError{Code: code, Msg: msg}
}

// NewWithDetails creates a new CuratorError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &CuratorError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new CuratorError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &CuratorError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new CuratorError wrapping an underlying error with details.
// Details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &CuratorError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a CuratorError.
func GetCode(err error) Code {
	var ce *CuratorError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// AsCuratorError returns (*CuratorError, true) if err is or wraps a CuratorError.
func AsCuratorError(err error) (*CuratorError, bool) {
	var ce *CuratorError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// copyDetails returns a copy of the details map, or nil if empty/nil.
func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
//
//	0  nil
//	3  E_INVALID_STATUS
//	2  usage, not-found, missing days, missing confirmation, empty batch
//	1  everything else
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	switch GetCode(err) {
	case EInvalidStatus:
		return 3
	case EUsage, EFileNotFound, ETrashNotFound, EInvalidDays, EConfirmationRequired, ENoFiles, ENameExists:
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ce *CuratorError
	if errors.As(err, &ce) {
		_, _ = fmt.Fprintf(w, "error_code: %s\n", ce.Code)
		_, _ = fmt.Fprintln(w, ce.Msg)
	} else {
		_, _ = fmt.Fprintln(w, err.Error())
	}
}

// JSONError is the stable JSON error envelope used by --json output.
type JSONError struct {
	Error     string `json:"error"`
	ErrorCode Code   `json:"error_code,omitempty"`
	Code      int    `json:"code"`
}

// PrintJSON writes err as a single-line JSON envelope.
func PrintJSON(w io.Writer, err error) {
	if err == nil {
		return
	}
	out := JSONError{Error: err.Error(), Code: ExitCode(err)}
	if ce, ok := AsCuratorError(err); ok {
		out.Error = ce.Msg
		out.ErrorCode = ce.Code
	}
	data, mErr := json.Marshal(out)
	if mErr != nil {
		_, _ = fmt.Fprintln(w, err.Error())
		return
	}
	_, _ = fmt.Fprintln(w, string(data))
}
