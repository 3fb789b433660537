// Package domain provides shared domain types for the remedy remediation system.
package domain

import "github.com/mrz1836/remedy/internal/constants"

// Re-export status and verdict types from the constants package.
// This allows consumers to import domain types and status types together,
// providing a unified API for working with remedy domain objects.
//
// Example usage:
//
//	import "github.com/mrz1836/remedy/internal/domain"
//
//	session := domain.Session{
//	    Status: domain.SessionStatusPending,
//	}
type (
	// SessionStatus represents the state of a session in the remedy state machine.
	SessionStatus = constants.SessionStatus

	// Verdict represents a synthesized or per-subsystem health verdict.
	Verdict = constants.Verdict

	// Severity represents how serious a classified failure is.
	Severity = constants.Severity

	// EscalationLevel represents how urgently a human must intervene.
	EscalationLevel = constants.EscalationLevel

	// FailureCategory classifies the root cause of a pipeline failure.
	FailureCategory = constants.FailureCategory
)

// Re-export SessionStatus constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	SessionStatusPending     = constants.SessionStatusPending
	SessionStatusMonitoring  = constants.SessionStatusMonitoring
	SessionStatusFixing      = constants.SessionStatusFixing
	SessionStatusRedeploying = constants.SessionStatusRedeploying
	SessionStatusWaiting     = constants.SessionStatusWaiting
	SessionStatusSucceeded   = constants.SessionStatusSucceeded
	SessionStatusFailed      = constants.SessionStatusFailed
	SessionStatusEscalated   = constants.SessionStatusEscalated
)

// Re-export Verdict constants for convenience.
const (
	VerdictSuccess = constants.VerdictSuccess
	VerdictFailure = constants.VerdictFailure
	VerdictRunning = constants.VerdictRunning
)

// Re-export EscalationLevel constants for convenience.
const (
	EscalationNone      = constants.EscalationNone
	EscalationWarning   = constants.EscalationWarning
	EscalationEmergency = constants.EscalationEmergency
	EscalationRollback  = constants.EscalationRollback
)
