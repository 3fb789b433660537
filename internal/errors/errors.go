// Package errors provides centralized error handling for remedy.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrMaxAttemptsExceeded indicates that the remediation loop consumed
	// its full attempt budget without the pipeline recovering.
	// The message is part of the public result contract; do not change it.
	ErrMaxAttemptsExceeded = errors.New("max attempts exceeded")

	// ErrRedeployFailed indicates that triggering a redeploy failed.
	// A failed redeploy is fatal to the current run.
	ErrRedeployFailed = errors.New("redeploy failed")

	// ErrFixApplication indicates that the auto-fix engine failed while
	// applying a candidate fix (as opposed to finding no candidate).
	ErrFixApplication = errors.New("fix application failed")

	// ErrSessionNotFound indicates that no session record exists for the
	// requested session identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates an attempt to create a session record
	// whose identifier is already in use.
	ErrSessionExists = errors.New("session already exists")

	// ErrKeyNotFound indicates that a store lookup found no value for the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidTransition indicates an attempt to move a session into a
	// status not reachable from its current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrLockTimeout indicates that acquiring a file lock exceeded the
	// configured timeout.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates a required value (commit id, session id, key)
	// was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrPathTraversal indicates a storage key attempted to escape the
	// store's base directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrCommandFailed indicates an external command run by a collaborator
	// exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandNotConfigured indicates a collaborator was asked to run
	// but has no command configured.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidRemediation indicates an invalid remediation
	// configuration value.
	ErrConfigInvalidRemediation = errors.New("invalid remediation configuration")

	// ErrConfigInvalidEscalation indicates an invalid escalation
	// configuration value.
	ErrConfigInvalidEscalation = errors.New("invalid escalation configuration")

	// ErrConfigInvalidStore indicates an invalid store configuration value.
	ErrConfigInvalidStore = errors.New("invalid store configuration")

	// ErrInvalidOutputFormat indicates an unsupported --output value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidRuleCatalog indicates the fix rule catalog failed to parse
	// or contained an invalid rule.
	ErrInvalidRuleCatalog = errors.New("invalid fix rule catalog")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
