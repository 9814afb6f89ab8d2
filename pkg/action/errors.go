package action

import (
	"errors"
	"fmt"
)

// ErrorType classifies action failures for callers that branch on outcome.
type ErrorType string

const (
	// ErrClickFailed means both the native click and the scripted click
	// fallback failed on a resolved element.
	ErrClickFailed ErrorType = "click_failed"

	// ErrSelectCommitFailed means an option was requested on a dropdown
	// but no strategy could verify the selection committed.
	ErrSelectCommitFailed ErrorType = "select_commit_failed"

	// ErrCommandFailed covers everything else: unknown methods, policy
	// denials, bad arguments, and substrate errors from the page.
	ErrCommandFailed ErrorType = "command_failed"
)

// Error is a classified action failure. It snapshots the request that
// failed so callers can log it whole. The resolution layer has its own
// error type; anything it raises is surfaced to callers unwrapped.
type Error struct {
	Type    ErrorType
	Method  string
	Path    string
	Args    []string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("action %s failed (%s)", e.Method, e.Type)
	if e.Path != "" {
		msg += fmt.Sprintf(" at %q", e.Path)
	}
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" with args %q", e.Args)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsActionError extracts an action Error from err's chain.
func AsActionError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// commandFailed wraps an arbitrary failure as a command_failed error
// snapshotting the request it sank.
func commandFailed(req Request, message string, err error) *Error {
	return &Error{
		Type:    ErrCommandFailed,
		Method:  req.Method,
		Path:    req.Path,
		Args:    req.Args,
		Message: message,
		Err:     err,
	}
}
