// Package testutil provides testing utilities for remedy.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockGHFailed indicates a mock gh command failed (used in tests).
	ErrMockGHFailed = errors.New("gh command failed")

	// ErrMockCommandFailed indicates a mock collaborator command failed (used in tests).
	ErrMockCommandFailed = errors.New("command failed")

	// ErrMockStoreUnavailable indicates a mock session store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("session store unavailable")

	// ErrMockMonitorFailed indicates a mock monitoring engine failed (used in tests).
	ErrMockMonitorFailed = errors.New("monitoring backend unavailable")

	// ErrMockDeployFailed indicates a mock deploy trigger failed (used in tests).
	ErrMockDeployFailed = errors.New("deploy trigger failed")

	// ErrMockApplyFailed indicates a mock fix application failed (used in tests).
	ErrMockApplyFailed = errors.New("fix apply failed")

	// ErrMockProbeFailed indicates a mock validation probe failed (used in tests).
	ErrMockProbeFailed = errors.New("probe failed")
)
